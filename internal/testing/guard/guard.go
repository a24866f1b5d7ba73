package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TRADEPOST_TEST_MODE") == "" {
			_ = os.Setenv("TRADEPOST_TEST_MODE", "1")
		}
	})
}
