package order

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
)

// Submission carries the order form attributes plus the optional logo
// artifact. Everything except the artifact ends up in the order payload
// untouched; the persistence layer never looks inside.
type Submission struct {
	StoreName         string   `json:"storeName" validate:"required"`
	BusinessType      string   `json:"businessType" validate:"required"`
	Province          string   `json:"province" validate:"required"`
	City              string   `json:"city" validate:"required"`
	Address           string   `json:"address"`
	PhoneNumber       string   `json:"phoneNumber" validate:"required,len=11,numeric"`
	Whatsapp          string   `json:"whatsapp"`
	Telegram          string   `json:"telegram"`
	FavoriteColor     string   `json:"favoriteColor" validate:"required"`
	PreferredFont     string   `json:"preferredFont"`
	BrandSlogan       string   `json:"brandSlogan"`
	Categories        string   `json:"categories" validate:"required"`
	EstimatedProducts string   `json:"estimatedProducts" validate:"required"`
	ProductDisplay    string   `json:"productDisplayType" validate:"required"`
	SpecialFeatures   string   `json:"specialFeatures"`
	PricingPlan       string   `json:"pricingPlan" validate:"required,oneof=basic standard advanced premium"`
	AdditionalModules []string `json:"additionalModules"`
	AdditionalNotes   string   `json:"additionalNotes"`

	// Logo is the raw uploaded artifact, validated by content, not by the
	// client-declared type.
	Logo []byte `json:"-"`
}

// ValidationError is the only submission failure a caller ever sees; storage
// trouble is absorbed by the tier fallback.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

func newValidator() *validatorv10.Validate {
	return validatorv10.New()
}

// checkAttributes runs struct validation and converts the first failure into
// a caller-facing ValidationError.
func checkAttributes(v *validatorv10.Validate, sub Submission) error {
	err := v.Struct(sub)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validatorv10.ValidationErrors); ok && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field(), Reason: fieldErrs[0].Tag()}
	}
	return &ValidationError{Field: "submission", Reason: err.Error()}
}

// payload flattens the submission into the opaque attribute map stored on
// the order.
func (s Submission) payload() map[string]any {
	modules := s.AdditionalModules
	if modules == nil {
		modules = []string{}
	}
	return map[string]any{
		"storeName":          s.StoreName,
		"businessType":       s.BusinessType,
		"province":           s.Province,
		"city":               s.City,
		"address":            s.Address,
		"phoneNumber":        s.PhoneNumber,
		"whatsapp":           s.Whatsapp,
		"telegram":           s.Telegram,
		"favoriteColor":      s.FavoriteColor,
		"preferredFont":      s.PreferredFont,
		"brandSlogan":        s.BrandSlogan,
		"categories":         s.Categories,
		"estimatedProducts":  s.EstimatedProducts,
		"productDisplayType": s.ProductDisplay,
		"specialFeatures":    s.SpecialFeatures,
		"pricingPlan":        s.PricingPlan,
		"additionalModules":  modules,
		"additionalNotes":    s.AdditionalNotes,
	}
}
