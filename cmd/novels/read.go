package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/services"
	"github.com/kerbaras/novels/pkg/utils"
	"github.com/spf13/cobra"
)

var errAccessDenied = errors.New("access denied")

// sessionOpener is the part of the controller the reader needs.
type sessionOpener interface {
	NewSession(sink reading.Sink, opts ...reading.Option) *reading.Session
}

var readCmd = &cobra.Command{
	Use:   "read [novel] [chapter-id]",
	Short: "Print a chapter",
	Long: `Print a chapter to the terminal. Without a chapter id the novel's first
chapter is read. A chapter path such as /novels/<id>/chapter/<id> also works.

With --binge, finishing a chapter moves on to the next one after a short pause,
until the last chapter or a chapter you may not read.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		binge, _ := cmd.Flags().GetBool("binge")
		width, _ := cmd.Flags().GetInt("width")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		controller := newController()
		defer controller.Close()

		chapterID, err := startingChapter(ctx, controller, args)
		cobra.CheckErr(err)

		auth, err := controller.ResolveAuth(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  %v; reading anonymously\n", err)
			auth = reading.AuthState{}
		}

		r := &chapterReader{controller: controller, auth: auth, width: width, binge: binge}
		if err := r.run(ctx, chapterID); err != nil && !errors.Is(err, context.Canceled) {
			cobra.CheckErr(err)
		}
	},
}

func startingChapter(ctx context.Context, c *services.LibraryController, args []string) (string, error) {
	if strings.HasPrefix(args[0], "/") {
		route := reading.ParsePath(args[0])
		if route.Kind != reading.RouteChapter {
			return "", fmt.Errorf("%s is not a chapter path", args[0])
		}
		return route.ChapterID, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}

	novelID := resolveNovelID(c, args[0])
	_, seq, err := c.Chapters(ctx, novelID)
	if err != nil {
		return "", err
	}
	entries := seq.Entries()
	if len(entries) == 0 {
		return "", fmt.Errorf("novel %s has no chapters", novelID)
	}
	return entries[0].ChapterID, nil
}

// chapterReader opens one reading session per chapter and follows the
// session's navigation requests.
type chapterReader struct {
	controller sessionOpener
	opts       []reading.Option
	auth       reading.AuthState
	width      int
	binge      bool
}

func (r *chapterReader) run(ctx context.Context, chapterID string) error {
	followed := false
	for chapterID != "" {
		next, err := r.readOne(ctx, chapterID, followed)
		if err != nil {
			return err
		}
		chapterID, followed = next, true
	}
	return nil
}

// readOne prints chapterID and, when binging, waits for the session to move
// on. It returns the chapter to read next, or "" to stop. A chapter reached
// by following the binge that may not be read ends the run quietly.
func (r *chapterReader) readOne(ctx context.Context, chapterID string, followed bool) (string, error) {
	intents := make(chan reading.Intent, 8)
	session := r.controller.NewSession(reading.SinkFunc(func(i reading.Intent) {
		select {
		case intents <- i:
		default:
		}
	}), r.opts...)
	defer session.Dispose()

	startErr := session.Start(ctx, chapterID, r.auth)
drain:
	for {
		select {
		case i := <-intents:
			if err := r.handle(i); err != nil {
				if followed && errors.Is(err, errAccessDenied) {
					r.notify("Binge reading stops here: " + err.Error())
					return "", nil
				}
				return "", err
			}
		default:
			break drain
		}
	}
	if startErr != nil {
		return "", startErr
	}

	view, ok := session.View()
	if !ok {
		return "", nil
	}
	r.print(view)
	if !r.binge {
		return "", nil
	}

	session.OnBingeComplete()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case i := <-intents:
			if i.Kind == reading.IntentNavigate {
				route := reading.ParsePath(i.Path)
				return route.ChapterID, nil
			}
			r.notify(i.Message)
			if i.Notice == reading.NoticeLastChapter {
				return "", nil
			}
		}
	}
}

func (r *chapterReader) handle(i reading.Intent) error {
	if i.Kind == reading.IntentNotify {
		r.notify(i.Message)
		return nil
	}
	switch reading.ParsePath(i.Path).Kind {
	case reading.RouteLogin:
		return fmt.Errorf("%w: run with --user <name> to sign in", errAccessDenied)
	case reading.RouteSubscribe:
		return fmt.Errorf("%w: a subscription is required", errAccessDenied)
	}
	return nil
}

func (r *chapterReader) notify(message string) {
	fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Render("» "+message))
}

func (r *chapterReader) print(view reading.ViewState) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("79"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	body := lipgloss.NewStyle().Width(r.width)

	pos := ""
	if view.Position >= 0 {
		pos = fmt.Sprintf(" · %d/%d", view.Position+1, len(view.Contents))
	}
	fmt.Println()
	fmt.Println(muted.Render(view.Novel.Title + pos))
	fmt.Println(title.Render(view.Chapter.Title))
	fmt.Println()
	for _, img := range view.Images {
		fmt.Println(muted.Render("[illustration] " + img))
	}
	if view.Audio != "" {
		fmt.Println(muted.Render("♪ " + view.Audio))
	}
	for _, p := range utils.Paragraphs(view.Chapter.Content) {
		fmt.Println(body.Render(p))
		fmt.Println()
	}
}

func init() {
	readCmd.Flags().BoolP("binge", "b", false, "keep reading the following chapters")
	readCmd.Flags().IntP("width", "w", 80, "wrap width")
	rootCmd.AddCommand(readCmd)
}
