package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoodGroupName(t *testing.T) {
	assert.Equal(t, "ICBM", FoodGroupName(ICBM))
	assert.Equal(t, "Unknown", FoodGroupName(0xFFFF))
}
