package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var noStream bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session",
	Long: `Start an interactive session against the configured model and tool
server. Responses stream by default; pass --no-stream for whole-message
replies.

In-session commands:
  /tools    list the tools the model can call
  /reset    clear the conversation history
  /quit     exit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("parley — model %s, %d tools. Type /quit to exit.\n",
			a.cfg.Model.Name, len(a.catalog.Names()))

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			switch line {
			case "/quit", "/exit":
				return nil
			case "/reset":
				a.engine.ResetHistory()
				fmt.Println("History cleared.")
				continue
			case "/tools":
				for _, name := range a.engine.AvailableTools() {
					fmt.Printf("  %s\n", name)
				}
				continue
			}

			if noStream {
				answer, err := a.engine.Send(ctx, line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Println(answer)
				continue
			}

			for ev := range a.engine.SendStream(ctx, line) {
				if ev.Err != nil {
					fmt.Fprintf(os.Stderr, "\nerror: %v\n", ev.Err)
					break
				}
				fmt.Print(ev.Text)
			}
			fmt.Println()
		}
	},
}

func init() {
	chatCmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for complete replies instead of streaming")
}
