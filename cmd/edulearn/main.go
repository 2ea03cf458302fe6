// Package main provides the CLI entrypoint of the EduLearn learner gateway.
//
// @title                      EduLearn Learner Gateway
// @version                    1.0
// @description                Backend-for-frontend of the EduLearn learner platform.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "edulearn",
		Short:         "EduLearn learner gateway",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCertificateCmd())

	return rootCmd
}
