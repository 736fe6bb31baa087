package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hibiken/asynq"

	"github.com/fakturlu/faktur-accounting/internal/jobs"
)

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.RedisAddr}
}

func newQueueClient() *jobs.Client {
	printVerbose("Using redis at %s\n", cfg.RedisAddr)
	return jobs.NewClient(redisOpts(), cfg.Peppol.MaxAttempts)
}

func printQueued(info *asynq.TaskInfo) error {
	if outputFormat == "table" {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "TASK\tQUEUE\tTYPE\tMAX RETRY\n")
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", info.ID, info.Queue, info.Type, info.MaxRetry)
		return w.Flush()
	}
	return outputJSON(os.Stdout, map[string]any{
		"task_id":   info.ID,
		"queue":     info.Queue,
		"type":      info.Type,
		"max_retry": info.MaxRetry,
	})
}
