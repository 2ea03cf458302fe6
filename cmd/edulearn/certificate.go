package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/infrastructure/certificate"
)

var (
	certStudent    string
	certCourse     string
	certInstructor string
	certDate       string
	certID         string
	certOutput     string
)

func newCertificateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Render a certificate PDF offline",
		RunE:  runCertificateCmd,
	}

	cmd.Flags().StringVar(&certStudent, "student", "", "student name (default: Student)")
	cmd.Flags().StringVar(&certCourse, "course", "", "course title")
	cmd.Flags().StringVar(&certInstructor, "instructor", "", "instructor name")
	cmd.Flags().StringVar(&certDate, "date", "", "issue date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&certID, "id", "", "certificate ID printed in the footer")
	cmd.Flags().StringVarP(&certOutput, "output", "o", "", "output file (default: <Course_Title>_Certificate.pdf)")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}

func runCertificateCmd(cmd *cobra.Command, _ []string) error {
	issued := time.Now()
	if certDate != "" {
		t, err := time.Parse(domain.DayLayout, certDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", certDate, err)
		}
		issued = t
	}

	pdf, err := certificate.NewPDFRenderer("").Render(domain.CertificateData{
		StudentName:    certStudent,
		CourseTitle:    certCourse,
		InstructorName: certInstructor,
		IssueDate:      issued.Format(domain.IssueDateLayout),
		CourseID:       certID,
	})
	if err != nil {
		return err
	}

	out := certOutput
	if out == "" {
		out = domain.CertificateFileName(certCourse)
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(pdf))
	return nil
}
