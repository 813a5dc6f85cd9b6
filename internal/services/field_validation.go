package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/textutil"
)

const (
	nameMinLength       = 3
	nameMaxLength       = 50
	cardNumberLength    = 16
	defaultPostalDigits = 5
)

var (
	namePattern            = regexp.MustCompile(`^[\p{L} ]+$`)
	defaultPhonePattern    = regexp.MustCompile(`^(\+?1[\s.-]?)?\(?[2-9][0-9]{2}\)?[\s.-]?[0-9]{3}[\s.-]?[0-9]{4}$`)
	foreignPhonePattern    = regexp.MustCompile(`^[0-9+()\-\s]{6,20}$`)
	foreignPostalPattern   = regexp.MustCompile(`^[0-9A-Za-z\-\s]{3,16}$`)
	emailPattern           = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	cardSeparatorsReplacer = strings.NewReplacer(" ", "", "-", "")
)

// FieldRules holds the regional checks applied at the shipping and payment gates.
type FieldRules struct {
	HomeCountry  string
	PhonePattern *regexp.Regexp
	PostalDigits int
}

// DefaultFieldRules returns the rules for the default home country.
func DefaultFieldRules() FieldRules {
	return FieldRules{
		HomeCountry:  DefaultHomeCountry,
		PhonePattern: defaultPhonePattern,
		PostalDigits: defaultPostalDigits,
	}
}

func (r FieldRules) withDefaults() FieldRules {
	if r.HomeCountry == "" {
		r.HomeCountry = DefaultHomeCountry
	}
	r.HomeCountry = normalizeCountry(r.HomeCountry)
	if r.PhonePattern == nil {
		r.PhonePattern = defaultPhonePattern
	}
	if r.PostalDigits <= 0 {
		r.PostalDigits = defaultPostalDigits
	}
	return r
}

// SanitizeShipping cleans free text and returns the field errors for info. An empty map means
// the shipping gate passes.
func (r FieldRules) SanitizeShipping(info domain.ShippingInfo) (domain.ShippingInfo, map[string]string) {
	r = r.withDefaults()
	sanitized := domain.ShippingInfo{
		FullName:   textutil.StripMarkup(info.FullName),
		Phone:      strings.TrimSpace(info.Phone),
		Email:      strings.TrimSpace(info.Email),
		Line1:      textutil.StripMarkup(info.Line1),
		Line2:      textutil.StripMarkup(info.Line2),
		City:       textutil.StripMarkup(info.City),
		State:      textutil.StripMarkup(info.State),
		PostalCode: strings.TrimSpace(info.PostalCode),
		Country:    normalizeCountry(info.Country),
	}
	if sanitized.Country == "" {
		sanitized.Country = r.HomeCountry
	}
	home := sanitized.Country == r.HomeCountry

	fields := map[string]string{}

	nameLength := utf8.RuneCountInString(sanitized.FullName)
	switch {
	case sanitized.FullName == "":
		fields["shipping.fullName"] = "is required"
	case !namePattern.MatchString(sanitized.FullName):
		fields["shipping.fullName"] = "may contain only letters and spaces"
	case nameLength < nameMinLength || nameLength > nameMaxLength:
		fields["shipping.fullName"] = fmt.Sprintf("must be between %d and %d characters", nameMinLength, nameMaxLength)
	}

	phonePattern := foreignPhonePattern
	if home {
		phonePattern = r.PhonePattern
	}
	switch {
	case sanitized.Phone == "":
		fields["shipping.phone"] = "is required"
	case !phonePattern.MatchString(sanitized.Phone):
		fields["shipping.phone"] = "is not a valid phone number"
	}

	if sanitized.Email != "" && !emailPattern.MatchString(sanitized.Email) {
		fields["shipping.email"] = "is not a valid email address"
	}
	if sanitized.Line1 == "" {
		fields["shipping.address"] = "is required"
	}
	if sanitized.City == "" {
		fields["shipping.city"] = "is required"
	}

	switch {
	case sanitized.PostalCode == "":
		fields["shipping.postalCode"] = "is required"
	case home:
		if len(sanitized.PostalCode) != r.PostalDigits || !allDigits(sanitized.PostalCode) {
			fields["shipping.postalCode"] = fmt.Sprintf("must be exactly %d digits", r.PostalDigits)
		}
	default:
		if !foreignPostalPattern.MatchString(sanitized.PostalCode) {
			fields["shipping.postalCode"] = "is not a valid postal code"
		}
	}

	return sanitized, fields
}

// SanitizePayment enforces card XOR cash on delivery.
func (r FieldRules) SanitizePayment(info domain.PaymentInfo) (domain.PaymentInfo, map[string]string) {
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(info.Method))))
	cardNumber := cardSeparatorsReplacer.Replace(strings.TrimSpace(info.CardNumber))
	sanitized := domain.PaymentInfo{
		Method:     method,
		CardNumber: cardNumber,
		CardHolder: textutil.StripMarkup(info.CardHolder),
		CardExpiry: strings.TrimSpace(info.CardExpiry),
	}

	fields := map[string]string{}
	switch method {
	case domain.PaymentMethodCard:
		if len(cardNumber) != cardNumberLength || !allDigits(cardNumber) {
			fields["payment.cardNumber"] = fmt.Sprintf("must be %d digits", cardNumberLength)
		}
	case domain.PaymentMethodCashOnDelivery:
		if cardNumber != "" || sanitized.CardHolder != "" || sanitized.CardExpiry != "" {
			fields["payment.cardNumber"] = "card details must be empty for cash on delivery"
		}
	default:
		fields["payment.method"] = "select card or cash on delivery"
	}
	return sanitized, fields
}

func allDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func lastFour(cardNumber string) string {
	if len(cardNumber) < 4 {
		return ""
	}
	return cardNumber[len(cardNumber)-4:]
}
