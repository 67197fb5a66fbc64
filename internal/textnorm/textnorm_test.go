package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	// whitespace runs collapse, edges trim
	assert.Equal(t, "Prince Jain", Clean("  Prince   Jain \n"))
	// NBSP and zero-width space
	assert.Equal(t, "a b", Clean("a b"))
	assert.Equal(t, "ab", Clean("a​b"))
	// CR/LF flatten to a single space
	assert.Equal(t, "a b", Clean("a\r\nb"))
	// NFKC folds compatibility forms (fullwidth digits)
	assert.Equal(t, "123", Clean("１２３"))
	// case is preserved
	assert.Equal(t, "PRINCE", Clean("PRINCE"))
}

func TestNormalize_CollidingForms(t *testing.T) {
	// the same identity typed three different ways must compare equal
	a := Normalize("Prince")
	b := Normalize("  prince ")
	c := Normalize("PRINCE ")
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}

func TestCleanPassword(t *testing.T) {
	// numeric round-trip artifact
	assert.Equal(t, "1234", CleanPassword("1234.0"))
	// only a trailing .0 is stripped, and only once
	assert.Equal(t, "12.50", CleanPassword("12.50"))
	assert.Equal(t, "1234.0", CleanPassword("1234.0.0"))
	assert.Equal(t, "pass.0word", CleanPassword("pass.0word"))
}

func TestSafeCell(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", SafeCell("=SUM(A1)"))
	assert.Equal(t, "'+1", SafeCell("+1"))
	assert.Equal(t, "'-1", SafeCell("-1"))
	assert.Equal(t, "'@cmd", SafeCell("@cmd"))
	assert.Equal(t, "round", SafeCell("round"))
}
