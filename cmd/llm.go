package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/llm"
	"github.com/abhisek/quiztutor/internal/store"
	"github.com/abhisek/quiztutor/internal/ui/theme"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		ctx := cmd.Context()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		var rows [][]string
		for _, e := range events {
			if failed && e.Success {
				continue
			}
			rows = append(rows, []string{
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format(timeLayout),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				theme.Mark(e.Success),
			})
		}
		if len(rows) == 0 {
			fmt.Println(theme.Hint.Render("No LLM calls recorded."))
			return nil
		}
		fmt.Println(theme.Table(
			[]string{"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK"},
			rows, 0, 4, 5, 6))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		ctx := cmd.Context()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("LLM call %d not found", id)
		}

		fmt.Println(theme.Title.Render(fmt.Sprintf("LLM call #%d", e.ID)) + "  " + theme.Mark(e.Success))
		for _, kv := range [][2]string{
			{"Time", e.Timestamp.Local().Format(timeLayout)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Error", e.ErrorMessage},
		} {
			if kv[1] != "" {
				fmt.Printf("%s %s\n", theme.PadRight(theme.Heading.Render(kv[0]), 10), kv[1])
			}
		}
		printSection("Request", e.RequestBody)
		printSection("Response", e.ResponseBody)
		return nil
	},
}

func printSection(title, body string) {
	fmt.Println()
	fmt.Println(theme.Heading.Render(title))
	fmt.Println(theme.Rule(60))
	if strings.TrimSpace(body) == "" {
		fmt.Println(theme.Hint.Render("(not captured)"))
		return
	}
	fmt.Println(body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println(theme.Hint.Render("No LLM usage recorded yet."))
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Println(theme.Title.Render("Usage by purpose"))
		fmt.Println(usageTable(byPurpose))
		fmt.Println()
		fmt.Println(theme.Title.Render("Estimated cost (USD)"))
		fmt.Println(costTable(byModel))
		return nil
	},
}

func usageTable(usage []store.LLMUsage) string {
	var rows [][]string
	var calls, in, out int
	for _, u := range usage {
		rows = append(rows, []string{
			u.Purpose,
			strconv.Itoa(u.Calls),
			strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens),
			strconv.FormatInt(u.AvgLatencyMs, 10),
		})
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	rows = append(rows, []string{theme.Heading.Render("total"), strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), ""})
	return theme.Table([]string{"Purpose", "Calls", "Input", "Output", "Avg ms"}, rows, 1, 2, 3, 4)
}

// costTable prices each model from the embedded table. Unpriced models show
// "?" and make the total a lower bound.
func costTable(usage []store.LLMUsage) string {
	var (
		rows     [][]string
		total    float64
		unpriced bool
	)
	for _, u := range usage {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = true
		}
		rows = append(rows, []string{truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost})
	}
	label := "total"
	if unpriced {
		label = "total (partial)"
	}
	rows = append(rows, []string{theme.Heading.Render(label), "", "", "", formatCost(total)})
	return theme.Table([]string{"Model", "Calls", "Input", "Output", "Cost"}, rows, 1, 2, 3, 4)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatCost(usd float64) string {
	if usd > 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().Int("limit", 20, "Number of calls to show")
	llmListCmd.Flags().String("purpose", "", "Only show one purpose (question-gen, evaluation, review, topics)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
