// Package certificate renders course certificates as single-page PDFs.
package certificate

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// Page geometry in points.
const (
	pageWidth  = 850.0
	pageHeight = 600.0
	matte      = 12.0
	frameInset = matte + 15
	innerInset = matte + 25
	cornerLen  = 35.0
	maxTextW   = 600.0
)

// renderEpoch pins the document dates so identical input gives identical bytes.
var renderEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type rgb struct{ r, g, b int }

var (
	gold      = rgb{212, 175, 55}
	paleGold  = rgb{236, 224, 182}
	deepGold  = rgb{179, 135, 40}
	brightSun = rgb{248, 201, 53}
	parchment = rgb{239, 232, 216}
	white     = rgb{255, 255, 255}
	ink       = rgb{34, 34, 34}
	softInk   = rgb{85, 85, 85}
	mutedInk  = rgb{102, 102, 102}
)

// PDFRenderer implements ports.CertificateRenderer. The DejaVu faces are
// compiled in, so rendering never touches the network or the filesystem.
type PDFRenderer struct {
	issuer string
}

// NewPDFRenderer creates a renderer. issuer is written as the document author.
func NewPDFRenderer(issuer string) *PDFRenderer {
	if issuer == "" {
		issuer = "EduLearn"
	}
	return &PDFRenderer{issuer: issuer}
}

var _ ports.CertificateRenderer = (*PDFRenderer)(nil)

// Render draws the certificate into a private buffer. Text the embedded faces
// cannot draw is refused rather than substituted. On failure the partial
// document is discarded and the error wraps domain.ErrRenderFailed.
func (r *PDFRenderer) Render(data domain.CertificateData) ([]byte, error) {
	if strings.TrimSpace(data.CourseTitle) == "" {
		return nil, fmt.Errorf("%w: course title is empty", domain.ErrRenderFailed)
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	student := studentLine(data.StudentName)
	footer := fmt.Sprintf("Issued on: %s • Certificate ID: %s", data.IssueDate, data.CourseID)
	for _, field := range []struct{ name, style, text string }{
		{"student name", "BI", student},
		{"course title", "B", data.CourseTitle},
		{"instructor name", "I", data.InstructorName},
		{"footer", "", footer},
	} {
		if c, bad := fonts.missingRune(field.style, field.text); bad {
			return nil, fmt.Errorf("%w: %s has unsupported character %U", domain.ErrRenderFailed, field.name, c)
		}
	}

	// Landscape swaps the size, so Wd/Ht are given portrait-wise.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageHeight, Ht: pageWidth},
	})
	pdf.SetCompression(false)
	pdf.SetCreationDate(renderEpoch)
	pdf.SetModificationDate(renderEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetProducer(r.issuer, false)
	pdf.SetCreator(r.issuer, false)
	pdf.SetAuthor(r.issuer, false)
	pdf.SetTitle("Certificate of Achievement", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	for _, style := range []string{"", "B", "I", "BI"} {
		pdf.AddUTF8FontFromBytes(fontFamily, style, fonts[style].data)
	}
	pdf.AddPage()

	d := drawer{pdf: pdf}

	d.frame()
	d.seal()

	d.centered(112, "B", 46, ink, "CERTIFICATE")
	d.centered(162, "I", 24, mutedInk, "OF ACHIEVEMENT")
	d.centered(218, "", 18, softInk, "This is to certify that")
	d.centered(248, "BI", 40, ink, student)
	d.rule(pageWidth/2-75, 300, 150, 1.5, gold)
	d.centered(320, "", 18, softInk, "has successfully completed the course")
	d.centered(346, "B", 22, ink, data.CourseTitle)
	d.centered(376, "", 18, softInk, "with all requirements and assessments.")
	d.rule(pageWidth/2-100, 430, 200, 1, gold)
	d.centered(436, "I", 28, ink, data.InstructorName)
	d.centered(470, "", 14, mutedInk, "Instructor")
	d.centered(pageHeight-matte-50, "", 12, mutedInk, footer)

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

func studentLine(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Student"
	}
	return name
}

type drawer struct {
	pdf *fpdf.Fpdf
}

func (d drawer) fill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d drawer) draw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }
func (d drawer) text(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }

// frame paints the matte, the gold borders, the corner marks and the two
// decorative rules.
func (d drawer) frame() {
	p := d.pdf

	d.fill(parchment)
	p.Rect(0, 0, pageWidth, pageHeight, "F")
	d.fill(white)
	p.Rect(matte, matte, pageWidth-2*matte, pageHeight-2*matte, "F")

	d.draw(gold)
	p.SetLineWidth(3)
	p.Rect(frameInset, frameInset, pageWidth-2*frameInset, pageHeight-2*frameInset, "D")

	d.draw(paleGold)
	p.SetLineWidth(1)
	p.Rect(innerInset, innerInset, pageWidth-2*innerInset, pageHeight-2*innerInset, "D")

	d.draw(gold)
	p.SetLineWidth(6)
	left, top := frameInset, frameInset
	right, bottom := pageWidth-frameInset, pageHeight-frameInset
	p.Line(left, top, left+cornerLen, top)
	p.Line(left, top, left, top+cornerLen)
	p.Line(right, top, right-cornerLen, top)
	p.Line(right, top, right, top+cornerLen)
	p.Line(left, bottom, left+cornerLen, bottom)
	p.Line(left, bottom, left, bottom-cornerLen)
	p.Line(right, bottom, right-cornerLen, bottom)
	p.Line(right, bottom, right, bottom-cornerLen)

	inner := pageWidth - 2*matte
	d.rule(pageWidth/2-inner*0.4, matte+70, inner*0.8, 2, gold)
	d.rule(pageWidth/2-inner*0.4, pageHeight-matte-95, inner*0.8, 2, gold)
}

// seal paints the gold medallion in the upper right corner.
func (d drawer) seal() {
	const radius = 65.0
	cx := pageWidth - matte - 60 - radius
	cy := matte + 60 + radius

	p := d.pdf
	p.SetLineWidth(1)
	d.draw(deepGold)
	d.fill(gold)
	p.Circle(cx, cy, radius, "FD")
	d.fill(brightSun)
	p.Circle(cx, cy, radius*0.85, "F")
	d.draw(white)
	p.Circle(cx, cy, radius*0.7, "D")
}

func (d drawer) rule(x, y, w, thickness float64, c rgb) {
	d.fill(c)
	d.pdf.Rect(x, y, w, thickness, "F")
}

// centered writes one line of text centered on the page. The font shrinks
// until the line fits the text column.
func (d drawer) centered(y float64, style string, size float64, c rgb, s string) {
	p := d.pdf
	p.SetFont(fontFamily, style, size)
	for size > 10 && p.GetStringWidth(s) > maxTextW {
		size--
		p.SetFont(fontFamily, style, size)
	}
	d.text(c)
	p.SetXY(0, y)
	p.CellFormat(pageWidth, size*1.2, s, "", 0, "C", false, 0, "")
}
