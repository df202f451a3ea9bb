package navigator

import (
	"os"
	"testing"

	"burrow/logging"
)

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	os.Exit(m.Run())
}
