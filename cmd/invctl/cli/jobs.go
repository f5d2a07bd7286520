package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/rudraroyaltypython/inventory-sys/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: client, inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		err = errors.Join(err, c.inspector.Close())
	}
	if c.client != nil {
		err = errors.Join(err, c.client.Close())
	}
	return err
}

// Trigger enqueues a supported job by name and returns its task id. The
// catalog import job reads its feed from the given reader.
func (c *JobsCLI) Trigger(ctx context.Context, name string, feed io.Reader) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("jobs cli: client not configured")
	}
	var (
		info *asynq.TaskInfo
		err  error
	)
	switch name {
	case jobs.TaskCatalogImport:
		if feed == nil {
			return "", errors.New("jobs cli: catalog import needs a feed")
		}
		body, readErr := io.ReadAll(feed)
		if readErr != nil {
			return "", readErr
		}
		info, err = c.client.EnqueueCatalogImport(ctx, jobs.CatalogImportPayload{
			BatchID: uuid.NewString(),
			CSV:     string(body),
		})
	case jobs.TaskLedgerRebalance:
		info, err = c.client.EnqueueLedgerRebalance(ctx)
	case jobs.TaskStockAudit:
		info, err = c.client.EnqueueStockAudit(ctx)
	default:
		return "", fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueues reports metrics for the default and maintenance queues.
func (c *JobsCLI) InspectQueues(ctx context.Context) ([]QueueStats, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	var stats []QueueStats
	for _, queue := range []string{jobs.QueueDefault, jobs.QueueMaintenance} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := c.inspector.GetQueueInfo(queue)
		if errors.Is(err, asynq.ErrQueueNotFound) {
			stats = append(stats, QueueStats{Queue: queue})
			continue
		}
		if err != nil {
			return nil, err
		}
		stats = append(stats, QueueStats{
			Queue:     queue,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
		})
	}
	return stats, nil
}

func newJobsCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}

	var feedPath string
	trigger := &cobra.Command{
		Use:       "trigger <job>",
		Short:     "Enqueue a background job",
		ValidArgs: []string{jobs.TaskCatalogImport, jobs.TaskLedgerRebalance, jobs.TaskStockAudit},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var feed io.Reader
			if feedPath != "" {
				in, closeIn, err := openInput(cmd, feedPath)
				if err != nil {
					return err
				}
				defer closeIn()
				feed = in
			}
			queue, err := st.env.OpenJobs(st.cfg)
			if err != nil {
				return err
			}
			defer queue.Close()

			id, err := queue.Trigger(cmd.Context(), args[0], feed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s\n", args[0], id)
			return nil
		},
	}
	trigger.Flags().StringVarP(&feedPath, "file", "f", "", "CSV feed for catalog:import, - for stdin")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show queue depths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queue, err := st.env.OpenJobs(st.cfg)
			if err != nil {
				return err
			}
			defer queue.Close()

			stats, err := queue.InspectQueues(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY")
			for _, s := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(trigger, status)
	return cmd
}
