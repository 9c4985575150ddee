// studentdir is the student directory client: an interactive terminal
// interface plus one-shot commands for scripts.
//
//	studentdir                       # interactive directory
//	studentdir list --group A1 --sort age --desc
//	studentdir export --out students.csv
//	studentdir add --name "Jane Doe" --age 22 --group B2 --email jane@example.com --image me.jpg
//	studentdir delete <id>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	if err := run(ctx, root, a); err != nil {
		stop()
		os.Exit(1)
	}
}
