package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

func (r *AskRequest) Sanitize()       { r.Question = strings.TrimSpace(r.Question) }
func (r *AskRequest) Validate() error { return validate.Struct(r) }

type HelpFieldRequest struct {
	FieldName string `json:"field_name" query:"field_name" validate:"required,max=128"`
}

func (r *HelpFieldRequest) Sanitize()       { r.FieldName = strings.TrimSpace(r.FieldName) }
func (r *HelpFieldRequest) Validate() error { return validate.Struct(r) }
