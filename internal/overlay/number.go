package overlay

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printerMu sync.Mutex
	printer   = message.NewPrinter(language.English)
)

// Int formats n with thousands separators, e.g. 1,048,576.
func Int(n int) string {
	printerMu.Lock()
	defer printerMu.Unlock()
	return printer.Sprintf("%d", n)
}
