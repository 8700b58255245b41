//go:build integration

package integration

import (
	"testing"

	"ratesvc/internal/testkit"
)

func TestMain(m *testing.M) {
	testkit.Run(m)
}
