package sandbox

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// RunWorker is the child-process entry point: read the guest source from in,
// execute it, and write the finished trace as a single JSON document to out.
// The parent treats the absence of output as the silent-failure path.
func RunWorker(in io.Reader, out io.Writer, cfg Config) error {
	source, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	result := Run(string(source), cfg)

	data, err := sonic.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
