package supervisor

import (
	"bufio"
	"os"
	"strings"
)

// drainOutput reads the command's output transport until it closes, writing
// each line to the console. Lines have no length cap. A trailing chunk with
// no newline is still delivered as its own line. End of stream is the
// normal way out: a plain EOF on a pipe, or a read error on a pty master
// once the slave side is gone. Neither is a failure, so neither is logged.
func (s *Supervisor) drainOutput(info procInfo, src *os.File) {
	defer src.Close()

	br := bufio.NewReader(src)
	for {
		chunk, err := br.ReadString('\n')
		if err != nil {
			if chunk != "" {
				s.console.line(info, trimEOL(chunk))
			}
			return
		}
		s.console.line(info, trimEOL(chunk))
	}
}

// trimEOL strips one trailing newline and, for pty output, the carriage
// return preceding it.
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
