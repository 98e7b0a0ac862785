package facts

import (
	"fmt"
	"os"
)

// appendLine writes one serialized fact and a trailing newline to the target
// file. Each call is a complete open-write-sync-close cycle; no handle is
// held between facts, so a run interrupted mid-write can corrupt at most the
// final line of the file.
func appendLine(target string, payload []byte) error {
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output %s: %w", target, err)
	}

	line := make([]byte, 0, len(payload)+1)
	line = append(line, payload...)
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("write output %s: %w", target, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("flush output %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", target, err)
	}
	return nil
}
