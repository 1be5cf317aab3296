package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/internal/store"
	"github.com/wptts/readaloud/tts"
	"github.com/wptts/readaloud/tts/engines/espeak"
	"github.com/wptts/readaloud/tts/engines/mock"
	"github.com/wptts/readaloud/tts/engines/piper"
	"github.com/wptts/readaloud/tts/keepalive"
	"github.com/wptts/readaloud/tts/sentence"
	"github.com/wptts/readaloud/ui"
)

var (
	listenPost int64
	userAgent  string
	style      string
	width      uint
	mouse      bool

	listenCmd = &cobra.Command{
		Use:   "listen [FILE|-]",
		Short: "Read an article aloud in the terminal",
		Long: paragraph(fmt.Sprintf("\n%s an article aloud. Markdown, HTML and plain text files are supported, "+
			"as well as stdin and posts from the local store.", keyword("Read"))),
		Example: paragraph("readaloud listen article.md\ncat article.html | readaloud listen -\nreadaloud listen --post 12"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runListen,
	}
)

// article is what the pager shows and what the player reads.
type article struct {
	note     string
	markdown string
	plain    string
}

func runListen(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	brand, err := config.LoadBrand(v)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return err
	}
	name, err := config.LoadEngine(v)
	if err != nil {
		return err
	}

	art, err := loadArticle(cmd.Context(), args, brand)
	if err != nil {
		return err
	}
	sentences, err := art.sentences()
	if err != nil {
		return err
	}

	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	// use style set in env, or the configured one if unset
	if cfg.GlamourStyle == "" || validateStyle(cfg.GlamourStyle) != nil {
		style = viper.GetString("style")
		if err := validateStyle(style); err != nil {
			return err
		}
		cfg.GlamourStyle = style
	}
	cfg.GlamourMaxWidth = detectWidth(cmd)
	cfg.EnableMouse = mouse
	cfg.Note = art.note
	cfg.Markdown = art.markdown
	cfg.PlainText = art.plain
	cfg.Settings = settings

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		player ui.Player
		ctrl   *tts.Controller
	)
	engine, err := newEngine(name)
	switch {
	case errors.Is(err, tts.ErrUnsupported):
		log.Warn("Speech is not available", "engine", name, "err", err)
		cfg.Unsupported = true
	case err != nil:
		return err
	default:
		ctrl = tts.NewController(engine, sentences, settings.Params())
		player = ctrl

		guard := keepalive.New(engine, userAgent)
		if guard.Active() {
			log.Info("Keep-alive enabled", "user_agent", userAgent)
		}
		go guard.Run(ctx)
	}

	p := ui.NewProgram(cfg, player)
	if viper.ConfigFileUsed() != "" {
		config.Watch(v, log.Default(), func(s config.Settings) {
			if ctrl != nil {
				ctrl.SetParams(s.Params())
			}
			p.Send(ui.SettingsMsg(s))
		})
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func newEngine(name string) (tts.Engine, error) {
	switch name {
	case "mock":
		opts := mock.DefaultOptions()
		opts.Auto = true
		return mock.New(opts), nil
	case "piper":
		c, err := config.LoadPiper(viper.GetViper())
		if err != nil {
			return nil, err
		}
		e, err := piper.New(piperConfig(c), espeak.WithLogger(log.Default()))
		if err != nil {
			return nil, err
		}
		return e, nil
	}

	e, err := espeak.New(espeak.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}
	return e, nil
}

func piperConfig(c config.PiperConfig) piper.Config {
	return piper.Config{Binary: c.Binary, Model: c.Model, Speaker: c.Speaker}
}

// loadArticle reads the article named by args or the --post flag. Without
// either, a piped stdin is used.
func loadArticle(ctx context.Context, args []string, brand config.Brand) (*article, error) {
	opts := sentenceOptions(brand)

	if listenPost != 0 {
		return loadPost(ctx, listenPost, opts)
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return nil, err
		} else if !yes {
			return nil, errors.New("missing article: pass a file, - for stdin or --post ID")
		}
		arg = "-"
	}

	var (
		b   []byte
		err error
	)
	note := arg
	if arg == "-" {
		note = "stdin"
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(arg)
		note = filepath.Base(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read article: %w", err)
	}

	switch kind := articleKind(arg, b); kind {
	case "html":
		return fromHTML(note, string(b), opts)
	case "text":
		text := strings.TrimSpace(string(b))
		return &article{note: note, markdown: text, plain: text}, nil
	default:
		plain, err := sentence.FromMarkdown(b, opts)
		if err != nil {
			return nil, err
		}
		return &article{note: note, markdown: string(b), plain: plain}, nil
	}
}

func loadPost(ctx context.Context, id int64, opts sentence.Options) (*article, error) {
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, err
	}
	posts, err := store.Open(ctx, srvCfg.DB)
	if err != nil {
		return nil, err
	}
	defer posts.Close() //nolint:errcheck

	post, err := posts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load post %d: %w", id, err)
	}

	art, err := fromHTML(post.Title, post.Content, opts)
	if err != nil {
		return nil, err
	}
	art.markdown = "# " + post.Title + "\n\n" + art.markdown
	return art, nil
}

// sentenceOptions reads the article region of a page and keeps the
// player's own labels out of the text.
func sentenceOptions(b config.Brand) sentence.Options {
	return sentence.Options{
		ExcludeClass: b.PlayerClass(),
		Content:      sentence.ContentSelectors,
	}
}

func fromHTML(note, fragment string, opts sentence.Options) (*article, error) {
	plain, err := sentence.ExtractText(fragment, opts)
	if err != nil {
		return nil, err
	}
	// every extracted line is a block of its own
	return &article{
		note:     note,
		markdown: strings.ReplaceAll(plain, "\n", "\n\n"),
		plain:    plain,
	}, nil
}

// sentences splits the article for reading. An article without readable
// text is an error rather than a silent player.
func (a *article) sentences() ([]string, error) {
	s := sentence.Split(a.plain)
	if len(s) == 0 {
		return nil, fmt.Errorf("%s: %w", a.note, tts.ErrNoSentences)
	}
	return s, nil
}

// articleKind decides by extension and falls back to sniffing for markup.
func articleKind(path string, b []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".md", ".markdown":
		return "markdown"
	}
	if strings.HasPrefix(strings.TrimSpace(string(b)), "<") {
		return "html"
	}
	return "markdown"
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = config.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func detectWidth(cmd *cobra.Command) uint {
	if cmd.Flags().Changed("width") {
		return width
	}
	w := width
	if term.IsTerminal(int(os.Stdout.Fd())) && w == 0 {
		tw, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err == nil {
			w = uint(tw) //nolint:gosec
		}
		if w > 120 {
			w = 120
		}
	}
	if w == 0 {
		w = 80
	}
	return w
}

func init() {
	listenCmd.Flags().Int64Var(&listenPost, "post", 0, "read the post with this ID from the store")
	listenCmd.Flags().StringVar(&userAgent, "user-agent", "", "user agent of the emulated platform; mobile agents enable the keep-alive workaround")
	listenCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	listenCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to detect)")
	listenCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = listenCmd.Flags().MarkHidden("mouse")

	_ = viper.BindPFlag("style", listenCmd.Flags().Lookup("style"))
	viper.SetDefault("style", styles.AutoStyle)
}
