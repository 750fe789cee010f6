package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recommend/internal/adapter/store"
	"recommend/internal/port"
	"recommend/internal/usecase"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs (requires history.enabled)",
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the results of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list (0 = all)")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
}

func openHistory() (port.HistoryStore, error) {
	path := historyPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no history found at %s. Enable history.enabled and run 'recommend run' first", path)
	}
	st, err := store.NewHistoryStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return st, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		output, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %d/%d  %q\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), len(r.Results), r.Hits, r.Query)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if err != nil {
		return err
	}

	if historyJSON {
		output, _ := json.MarshalIndent(run, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Run:        %s\n", run.ID)
	fmt.Printf("Query:      %s\n", run.Query)
	fmt.Printf("Created:    %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Embedding:  %s\n", run.EmbeddingModel)
	fmt.Printf("Reranker:   %s (top_k=%d, top_n=%d, hits=%d)\n", run.RerankModel, run.TopK, run.TopN, run.Hits)
	return usecase.DisplayResults(os.Stdout, run.Results)
}
