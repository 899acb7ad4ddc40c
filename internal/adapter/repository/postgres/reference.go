package postgres

import (
	"strings"

	"github.com/google/uuid"
)

// ReferenceGenerator produces customer-facing transaction references:
// "TXN" followed by 12 uppercase hex characters.
type ReferenceGenerator struct{}

// NewReferenceGenerator creates a new ReferenceGenerator.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{}
}

// Generate generates a new reference number.
func (g *ReferenceGenerator) Generate() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TXN" + hex[:12]
}
