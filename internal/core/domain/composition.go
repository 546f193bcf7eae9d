package domain

import "strings"

const (
	DefaultPerfumerName     = "Not specified"
	DefaultOlfactoryPyramid = "To be defined"
)

// ProductFields describes the new product a prompt is composed for.
type ProductFields struct {
	ProductName        string `json:"product_name"`
	PerfumerName       string `json:"perfumer_name"`
	BrandValues        string `json:"brand_values"`
	ProductDescription string `json:"product_description"`
	OlfactoryPyramid   string `json:"olfactory_pyramid"`
	Keywords           string `json:"keywords"`
	Destination        string `json:"destination,omitempty"`
}

// Validate reports an ErrValidation when a mandatory field is blank.
func (f ProductFields) Validate() error {
	if strings.TrimSpace(f.ProductName) == "" ||
		strings.TrimSpace(f.BrandValues) == "" ||
		strings.TrimSpace(f.ProductDescription) == "" {
		return NewValidationError("validate product fields", "Product Name, Brand Values and Description are mandatory")
	}
	return nil
}

// WithDefaults fills optional fields with the placeholder text used in prompts.
func (f ProductFields) WithDefaults() ProductFields {
	out := f
	if strings.TrimSpace(out.PerfumerName) == "" {
		out.PerfumerName = DefaultPerfumerName
	}
	if strings.TrimSpace(out.OlfactoryPyramid) == "" {
		out.OlfactoryPyramid = DefaultOlfactoryPyramid
	}
	if strings.TrimSpace(out.Keywords) == "" {
		out.Keywords = ""
	}
	if strings.TrimSpace(out.Destination) == "" {
		out.Destination = "Instagram"
	}
	return out
}

// RetrievalQuery is the text used to look up similar posts.
func (f ProductFields) RetrievalQuery() string {
	return f.ProductName + " " + f.BrandValues + " " + f.ProductDescription
}

// CompositionContext holds every field the generation template may reference.
type CompositionContext struct {
	Product       ProductFields
	BrandAnalysis string
	PostExamples  string
}

func (c CompositionContext) Fields() map[string]string {
	return map[string]string{
		"product_name":        c.Product.ProductName,
		"perfumer_name":       c.Product.PerfumerName,
		"brand_values":        c.Product.BrandValues,
		"product_description": c.Product.ProductDescription,
		"olfactory_pyramid":   c.Product.OlfactoryPyramid,
		"keywords":            c.Product.Keywords,
		"destination":         c.Product.Destination,
		"brand_analysis":      c.BrandAnalysis,
		"post_examples":       c.PostExamples,
	}
}

// AnalysisContext holds the fields of the brand-voice analysis template.
type AnalysisContext struct {
	CombinedText string
}

func (c AnalysisContext) Fields() map[string]string {
	return map[string]string{"combined_text": c.CombinedText}
}

// Composition is the result of one prompt composition run.
type Composition struct {
	Prompt              string            `json:"prompt"`
	BrandAnalysis       string            `json:"brand_analysis"`
	Examples            []RetrievalResult `json:"examples"`
	RenderedInstruction string            `json:"rendered_instruction"`
}
