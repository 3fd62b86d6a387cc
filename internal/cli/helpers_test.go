package cli

import (
	"io"

	"github.com/jonwraymond/discordops/observe"
)

func discardLogger() observe.Logger {
	return observe.NewLoggerWithWriter("error", io.Discard)
}
