package uploads

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"inscription_backend/internals/helpers/apperr"
)

// 300 DPI
const pxPerMM = 11.81

const tolerance = 0.10

var mimeByFormat = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

type Result struct {
	DocumentType DocType  `json:"document_type"`
	FileName     string   `json:"file_name"`
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
	SizeMB       float64  `json:"size_mb"`
	DetectedMIME string   `json:"detected_mime"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
}

// Validate checks one uploaded file. Problems with the file itself land in
// Result.Errors; only an unknown document type is returned as an error.
func Validate(docType DocType, filename string, content []byte) (*Result, error) {
	rule, ok := RuleFor(docType)
	if !ok {
		return nil, apperr.Invalid("document_type", fmt.Sprintf("unknown document type %q", docType))
	}

	res := &Result{
		DocumentType: docType,
		FileName:     filename,
		Errors:       []string{},
		Warnings:     []string{},
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !slices.Contains(rule.Formats, ext) {
		res.Errors = append(res.Errors, fmt.Sprintf("invalid format %q, accepted: %s", ext, strings.Join(rule.Formats, ", ")))
	}

	sizeMB := float64(len(content)) / (1024 * 1024)
	res.SizeMB = math.Round(sizeMB*100) / 100
	if sizeMB > rule.MaxSizeMB {
		res.Errors = append(res.Errors, fmt.Sprintf("file too large: %.2fMB, maximum %gMB", sizeMB, rule.MaxSizeMB))
	}

	mt := mimetype.Detect(content)
	res.DetectedMIME = mt.String()
	if !acceptsMIME(rule, mt) {
		res.Errors = append(res.Errors, fmt.Sprintf("content is %s, which does not match the accepted formats", mt.String()))
	}

	if mt.Is("image/jpeg") || mt.Is("image/png") {
		checkImage(rule, content, res)
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}

func acceptsMIME(rule Rule, mt *mimetype.MIME) bool {
	for _, f := range rule.Formats {
		if mt.Is(mimeByFormat[f]) {
			return true
		}
	}
	return false
}

func checkImage(rule Rule, content []byte, res *Result) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("unreadable image: %v", err))
		return
	}
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	if mode := colorMode(img); mode != "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("image mode %s, RGB recommended", mode))
	}

	if rule.Photo == nil {
		return
	}
	wantW := int(rule.Photo.WidthMM * pxPerMM)
	wantH := int(rule.Photo.HeightMM * pxPerMM)
	if math.Abs(float64(res.Width-wantW)) > float64(wantW)*tolerance {
		res.Warnings = append(res.Warnings, fmt.Sprintf("width %dpx may not match the required %gmm", res.Width, rule.Photo.WidthMM))
	}
	if math.Abs(float64(res.Height-wantH)) > float64(wantH)*tolerance {
		res.Warnings = append(res.Warnings, fmt.Sprintf("height %dpx may not match the required %gmm", res.Height, rule.Photo.HeightMM))
	}

	want := rule.Photo.WidthMM / rule.Photo.HeightMM
	if res.Height > 0 {
		got := float64(res.Width) / float64(res.Height)
		if math.Abs(got-want) > want*tolerance {
			res.Warnings = append(res.Warnings, fmt.Sprintf("aspect ratio %.2f differs from %.0fx%.0fmm", got, rule.Photo.WidthMM, rule.Photo.HeightMM))
		}
	}
}

// colorMode names modes other than RGB and grayscale.
func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.CMYK:
		return "CMYK"
	case *image.Paletted:
		return "P"
	case *image.Alpha, *image.Alpha16:
		return "A"
	}
	return ""
}
