package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNumeroDocumento(t *testing.T) {
	usuario := uuid.MustParse("a3bb189e-8bf9-3888-9912-ace4e6543002")
	fecha := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	doc := numeroDocumento("CI", fecha, usuario)
	assert.Equal(t, fmt.Sprintf("CI-20260315-%s", "a3bb189e"), doc)
}
