package dice_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDice(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dice Suite")
}
