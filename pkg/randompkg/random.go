// Package randompkg provides functionality for generating random application common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Float64 is a shortcut for generating a random float between 0 and 1 using crypto/rand.
func Float64() float64 {
	return float64(Intn(1<<32)) / (1 << 32)
}

// Int32Between generates a random integer between min and max.
func Int32Between(min, max int) int32 {
	return int32(min) + int32(Intn(max-min))
}

// Int64Between generates a random 64-bit integer between min and max.
func Int64Between(min, max int) int64 {
	return int64(min) + Intn(max-min)
}

// FloatBetween generates a random decimal number between min and max rounded to 4 decimals.
func FloatBetween(min, max float64) float64 {
	numInRange := min + Float64()*(max-min)
	return math.Floor(numInRange*10_000) / 10_000
}

// MoneyAmountBetween generates a random amount of money between min and max rounded to 4 decimals.
func MoneyAmountBetween(min, max float64) string {
	return decimal.NewFromFloat(FloatBetween(min, max)).String()
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Name generates a random person name.
func Name() string {
	return String(6)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// ISBN generates a random 13-digit ISBN-like string.
func ISBN() string {
	var sb strings.Builder

	sb.WriteString("978")

	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "%d", Intn(10))
	}

	return sb.String()
}

// Category generates a random book category.
func Category() string {
	categories := []string{"Fiction", "Science", "History", "Engineering", "Philosophy"}
	return categories[Intn(len(categories))]
}
