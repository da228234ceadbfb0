package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatrelay/internal/config"
	"chatrelay/internal/terminal"
	"chatrelay/internal/widget"
)

// defaultWorkerURL can be replaced at build time with
// -ldflags "-X main.defaultWorkerURL=https://...".
var defaultWorkerURL = config.DefaultWorkerURL

type options struct {
	endpoint string
	page     string
	store    string
	timeout  time.Duration
	verbose  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.LoadWidget()
	opts := &options{
		endpoint: cfg.WorkerURL,
		page:     cfg.PagePath,
		store:    cfg.Store,
		timeout:  cfg.RequestTimeout,
	}

	root := &cobra.Command{
		Use:          "chat",
		Short:        "Chat with the product advisor through the relay proxy",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", opts.endpoint, "proxy URL (overrides page and saved settings)")
	root.PersistentFlags().StringVar(&opts.page, "page", opts.page, "HTML page or URL carrying <meta name=\"worker-url\">")
	root.PersistentFlags().StringVar(&opts.store, "store", opts.store, "settings store: file path or redis:// URL")
	root.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "give up on a reply after this long")
	root.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(newConfigCmd(opts))
	return root
}

func buildResolver(store widget.Store, opts *options) *widget.Resolver {
	return widget.NewResolver(store, config.DefaultWorkerURL,
		widget.NewStaticProvider("--endpoint", opts.endpoint),
		widget.NewMetaProvider(opts.page, &http.Client{Timeout: opts.timeout}),
		widget.NewStoreProvider(store),
		widget.NewDefaultProvider(defaultWorkerURL),
	)
}

// newView draws with colors on a terminal and plain text anywhere else.
func newView(out io.Writer) *terminal.View {
	if f, ok := out.(*os.File); ok {
		return terminal.NewView(f)
	}
	return terminal.NewPlainView(out)
}

func runChat(ctx context.Context, opts *options, cfg *config.WidgetConfig, in io.Reader, out io.Writer) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}

	store, err := widget.OpenStore(opts.store)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer store.Close()

	view := newView(out)
	defer view.Cleanup()

	resolver := buildResolver(store, opts)
	ctrl := widget.NewController(widget.NewSession(cfg.SystemPrompt), resolver, widget.NewClient(opts.timeout), view)

	endpoint, ok := resolver.Resolve(ctx)
	view.PrintWelcome("L'Oréal Product Advisor", endpoint)
	if !ok {
		view.PrintInfo("No proxy configured yet. Run `chat config set-endpoint <url>` or pass --endpoint.")
	}
	view.AppendMessage(widget.BubbleAssistant, cfg.Greeting)
	view.Focus()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/exit", "/quit":
			view.PrintGoodbye()
			return nil
		case "":
			view.Focus()
			continue
		}

		submit(ctx, ctrl, line)
		if ctx.Err() != nil {
			break
		}
	}

	view.PrintGoodbye()
	return scanner.Err()
}

// submit owns SIGINT only while a request is in flight: ^C cancels the
// request, while ^C at the prompt keeps its default meaning and exits.
func submit(ctx context.Context, ctrl *widget.Controller, line string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctrl.HandleSubmit(ctx, line)
}
