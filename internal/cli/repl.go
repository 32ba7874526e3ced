package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/dyike/ScreenerGo/internal/models"
)

const replSessionID = "repl"

// runChatREPL drives the interactive loop until the user quits.
func runChatREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()

	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println(renderBanner())

	showTrace := false
	for {
		query, err := promptForQuery()
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(query) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Println("Commands: /tools  /trace  /clear  /quit")
			continue
		case "/tools":
			for _, name := range application.registry.Names() {
				fmt.Println("  " + toolNameStyle.Render(name))
			}
			continue
		case "/trace":
			showTrace = !showTrace
			fmt.Printf("trace output %v\n", showTrace)
			continue
		case "/clear":
			application.orchestrator.ClearSession(replSessionID)
			fmt.Println("conversation cleared")
			continue
		}

		result := application.orchestrator.Chat(ctx, models.ChatRequest{
			Message:   query,
			SessionID: replSessionID,
		})

		if showTrace && len(result.Trace) > 0 {
			fmt.Print(renderTrace(result.Trace))
		}
		if result.Reason != "" {
			fmt.Println(renderError(result.Answer))
			continue
		}
		fmt.Println(renderAnswer(result.Answer))
	}
}

func promptForQuery() (string, error) {
	var query string
	prompt := &survey.Input{
		Message: "You:",
		Help:    "Ask about stocks, industries, or sectors. /help lists commands.",
	}
	if err := survey.AskOne(prompt, &query); err != nil {
		return "", err
	}
	return query, nil
}
