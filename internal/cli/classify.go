package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/errhandling"
	"github.com/vietddude/guardian/internal/errhandling/classify"
	"github.com/vietddude/guardian/internal/errhandling/normalize"
	"github.com/vietddude/guardian/internal/errhandling/notify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a captured failure read from a file or stdin",
	Long: `Reads a JSON document describing a failure and prints how it is classified.

An HTTP response is {"status": 429, "headers": {"Retry-After": "2"}, "body": {...}}.
A transport failure is {"message": "dial tcp: i/o timeout"}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

// capturedFailure is the input document of the classify command.
type capturedFailure struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
	Message string            `json:"message"`
}

// toError turns the document back into the error a client would have seen.
func (c capturedFailure) toError() error {
	if c.Status == 0 {
		if c.Message == "" {
			return errors.New("")
		}
		return errors.New(c.Message)
	}
	header := make(http.Header, len(c.Headers))
	for k, v := range c.Headers {
		header.Set(k, v)
	}
	return &normalize.ResponseError{StatusCode: c.Status, Body: c.Body, Header: header}
}

// classification is what the command prints.
type classification struct {
	Descriptor   domain.ErrorDescriptor
	Category     domain.ErrorCategory
	Severity     domain.ErrorSeverity
	Fingerprint  string
	Notification notify.Notification
}

func classifyFailure(r io.Reader) (classification, error) {
	var in capturedFailure
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return classification{}, fmt.Errorf("failed to parse input: %w", err)
	}

	d := normalize.Normalize(in.toError())
	category, severity := classify.Classify(d)
	msg := errhandling.UserMessage(category, d)
	var service string
	if s, ok := d.Details["service"].(string); ok {
		service = s
	}
	return classification{
		Descriptor:   d,
		Category:     category,
		Severity:     severity,
		Fingerprint:  domain.Fingerprint(category, d),
		Notification: notify.Compose(category, d, msg, service),
	}, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	c, err := classifyFailure(in)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintf(w, "CATEGORY\t%s\n", c.Category)
	_, _ = fmt.Fprintf(w, "SEVERITY\t%s\n", c.Severity)
	_, _ = fmt.Fprintf(w, "FINGERPRINT\t%s\n", c.Fingerprint)
	_, _ = fmt.Fprintf(w, "MESSAGE\t%s\n", c.Descriptor.Message)
	if hint := c.Descriptor.RecoveryHint; hint != nil {
		_, _ = fmt.Fprintf(w, "STRATEGY\t%s (retry_enabled=%t)\n", hint.Strategy, hint.RetryEnabled)
	}
	_, _ = fmt.Fprintf(w, "NOTIFICATION\t[%s] %s: %s\n", c.Notification.Level, c.Notification.Title, c.Notification.Body)
	return w.Flush()
}
