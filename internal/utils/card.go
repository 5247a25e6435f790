package utils

import "strings"

// NormalizeCardNumber strips every non-digit character from a card
// number. An empty result means the input was not a card number at
// all; callers treat that as a validation failure.
func NormalizeCardNumber(number string) string {
    var b strings.Builder
    for _, r := range number {
        if r >= '0' && r <= '9' {
            b.WriteRune(r)
        }
    }
    return b.String()
}

// MaskCardNumber reduces a card number to its last four digits in the
// usual "**** **** **** 1234" presentation.
func MaskCardNumber(number string) string {
    last4 := number
    if len(number) > 4 {
        last4 = number[len(number)-4:]
    }
    return "**** **** **** " + last4
}

// DetectCardBrand guesses the card network from the leading digits of
// a normalized number. Prefixes follow the issuer ranges: 4 for Visa,
// 51-55 and 22-27 for Mastercard, 34/37 for Amex.
func DetectCardBrand(digits string) string {
    switch {
    case strings.HasPrefix(digits, "4"):
        return "VISA"
    case hasPrefixInRange(digits, 51, 55) || hasPrefixInRange(digits, 22, 27):
        return "MASTERCARD"
    case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
        return "AMEX"
    default:
        return "UNKNOWN"
    }
}

func hasPrefixInRange(digits string, lo, hi int) bool {
    if len(digits) < 2 {
        return false
    }
    p := int(digits[0]-'0')*10 + int(digits[1]-'0')
    return p >= lo && p <= hi
}
