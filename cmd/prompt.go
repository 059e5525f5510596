package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/jfmyers9/plexlint/internal/config"
)

// bufferedInput wraps in once so consecutive prompts share its read buffer.
// Terminals are left unwrapped so passwords can be read without echo.
func bufferedInput(in io.Reader) io.Reader {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return in
	}
	return lineReader(in)
}

// lineReader reuses in when it is already buffered.
func lineReader(in io.Reader) *bufio.Reader {
	if br, ok := in.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(in)
}

// confirmLibraries lists the configured libraries and asks whether to go on.
// Anything but "y" declines.
func confirmLibraries(in io.Reader, out io.Writer, cfg *config.Config) (bool, error) {
	fmt.Fprintln(out, "Current libraries are:")
	for _, lib := range cfg.Content.Libraries {
		fmt.Fprintf(out, "  * %s\n", lib)
	}
	fmt.Fprintf(out, "If these aren't correct, edit %s to add the target libraries.\n", cfg.Path())
	fmt.Fprint(out, "Press [y] to continue, anything else to exit: ")

	response, err := lineReader(in).ReadString('\n')
	if err != nil && response == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return strings.ToLower(strings.TrimSpace(response)) == "y", nil
}
