package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/models"
)

type DocumentService struct {
	config  *config.Config
	storage *StorageService
}

func NewDocumentService(cfg *config.Config, storage *StorageService) *DocumentService {
	return &DocumentService{config: cfg, storage: storage}
}

// RenderAgreementPDF renders the confidentiality agreement for an
// NDA, stores a copy under the upload dir, and returns both the stored
// path and a base64 encoding for the signature provider's envelope
// payload.
func (s *DocumentService) RenderAgreementPDF(agreement *models.NdaAgreement, project *models.Project) (string, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(190, 10, "NON-DISCLOSURE AGREEMENT", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)

	content := `This Non-Disclosure Agreement ("Agreement") is entered into as of ` + time.Now().Format("January 2, 2006") + `.

BETWEEN:
` + agreement.EntrepreneurName + ` ("Disclosing Party"), owner of the project "` + project.Title + `"
AND
` + agreement.CompanySignerName + `, representing ` + agreement.CompanyName + ` ("Receiving Party")

1. PURPOSE
The Receiving Party wishes to receive access to confidential project information, including business plans, technical specifications, and commercial terms, for the purpose of evaluating and bidding on the project.

2. CONFIDENTIAL INFORMATION
"Confidential Information" includes all information disclosed through the Wathiq platform relating to the project, whether written, oral, or in any other form, that is designated as confidential or that reasonably should be understood to be confidential.

3. OBLIGATIONS
The Receiving Party agrees to:
a) Hold all Confidential Information in strict confidence;
b) Not disclose Confidential Information to any third party without prior written consent;
c) Use Confidential Information solely for evaluating and executing the project;
d) Protect Confidential Information using no less than reasonable care.

4. TERM
This Agreement remains in effect for two (2) years from the date both parties sign through the electronic signature provider.

5. ELECTRONIC SIGNATURE
Both parties agree that signatures completed through the licensed e-signature provider are legally binding and have the same force as handwritten signatures.`

	pdf.MultiCell(190, 5, content, "", "", false)
	pdf.Ln(10)

	// Parties section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 10, "SIGNERS")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(190, 5, "Receiving Party: "+agreement.CompanySignerName+" ("+agreement.CompanyName+")")
	pdf.Ln(5)
	pdf.Cell(190, 5, "Email: "+agreement.CompanySignerEmail)
	pdf.Ln(8)
	pdf.Cell(190, 5, "Disclosing Party: "+agreement.EntrepreneurName)
	pdf.Ln(5)
	pdf.Cell(190, 5, "Email: "+agreement.EntrepreneurEmail)
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(190, 4, "This document is submitted to the e-signature provider for signing by both parties. The signed original is retained by the provider; this copy is for the platform's records.", "", "", false)

	filename := fmt.Sprintf("nda_%s_%s.pdf", agreement.ID.String()[:8], time.Now().Format("20060102"))
	filePath, err := s.storage.DocumentPath("ndas", filename)
	if err != nil {
		return "", "", err
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", "", err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return "", "", err
	}

	return filePath, base64.StdEncoding.EncodeToString(raw), nil
}
