package whatsapp

import (
	"fmt"
	"io"
	"os"

	"github.com/mdp/qrterminal/v3"
)

// TerminalQR renders pairing codes as QR codes on a terminal
type TerminalQR struct {
	Out io.Writer
}

// Render prints code as a half-block QR code
func (q TerminalQR) Render(code string) {
	out := q.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, "Scan this QR code to log in:")
	qrterminal.GenerateHalfBlock(code, qrterminal.L, out)
}
