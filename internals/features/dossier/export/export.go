// Package export renders the required-documents list as a spreadsheet
// or as a ready-to-send email.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inscription_backend/internals/helpers/apperr"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatEmail Format = "email"
)

// ParseFormat trims and lower-cases name. An empty name means CSV.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatEmail:
		return FormatEmail, nil
	default:
		return "", apperr.Invalid("format", fmt.Sprintf("unsupported format %q, use csv or email", name))
	}
}

// StudentInfo is the optional header block of an export.
type StudentInfo struct {
	Institution     string
	LastName        string
	FirstName       string
	EnrollmentLabel string
}

func (i StudentInfo) institution() string {
	if s := strings.TrimSpace(i.Institution); s != "" {
		return s
	}
	return "Sciences Po Aix"
}

func (i StudentInfo) fullName() string {
	return strings.TrimSpace(i.LastName + " " + i.FirstName)
}

// BOM is prepended to CSV downloads so spreadsheet tools detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

func checkDocs(docs []string) error {
	if len(docs) == 0 {
		return apperr.Invalid("required_documents", "no documents to export")
	}
	return nil
}

// CSV renders docs as a ';'-separated sheet. The result carries no BOM.
func CSV(docs []string, info StudentInfo, now time.Time) ([]byte, error) {
	if err := checkDocs(docs); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	rows := [][]string{
		{"DOCUMENTS À FOURNIR - " + strings.ToUpper(info.institution())},
		{},
	}
	if name := info.fullName(); name != "" || info.EnrollmentLabel != "" {
		rows = append(rows,
			[]string{"Étudiant:", name},
			[]string{"Type d'inscription:", info.EnrollmentLabel},
			[]string{},
		)
	}
	rows = append(rows, []string{"Numéro", "Document"}, []string{})
	for i, d := range docs {
		rows = append(rows, []string{strconv.Itoa(i + 1), d})
	}
	rows = append(rows,
		[]string{},
		[]string{"Généré le", now.Format("02/01/2006")},
		[]string{"Source", "Agent d'inscription " + info.institution()},
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailOf renders docs as a numbered list inside a short message.
func EmailOf(docs []string, info StudentInfo) (Email, error) {
	if err := checkDocs(docs); err != nil {
		return Email{}, err
	}
	inst := info.institution()

	var b strings.Builder
	b.WriteString("Bonjour,\n\n")
	fmt.Fprintf(&b, "Voici la liste des documents à fournir pour mon inscription à %s :\n\n", inst)
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	b.WriteString("\nCordialement")
	if name := info.fullName(); name != "" {
		b.WriteString(",\n" + name)
	}

	return Email{
		Subject: "Documents à fournir - " + inst,
		Body:    b.String(),
	}, nil
}
