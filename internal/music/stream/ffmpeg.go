package stream

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// openPCM starts ffmpeg on url. The returned cleanup kills the process and
// reaps it; it is safe to call more than once.
func openPCM(url string, filters FilterConfig) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg", filters.Args(url)...)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		})
	}

	return reader, cleanup, nil
}
