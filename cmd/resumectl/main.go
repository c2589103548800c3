// Command resumectl drives the resume workflow from a terminal: list,
// upload, view, re-analyze and watch resumes on the backend.
package main

import (
	"os"

	"github.com/Abraxas-365/resumelens/pkg/logx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.Sync()
		os.Exit(1)
	}
}
