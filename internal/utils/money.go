package utils

import "math"

// TaxRate is the VAT applied to every purchase subtotal.
const TaxRate = 0.12

// Round2 rounds a monetary amount to two decimals. Rounding happens
// at computation time; the database stores the already-rounded value.
func Round2(amount float64) float64 {
    return math.Round(amount*100) / 100
}

// ComputeTax returns the rounded tax owed on a subtotal.
func ComputeTax(subtotal float64) float64 {
    return Round2(subtotal * TaxRate)
}
