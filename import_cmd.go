package main

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/internal/store"
	"github.com/wptts/readaloud/tts/sentence"
)

var (
	importType   string
	importStatus string
	importAuthor string
	importImage  string

	importCmd = &cobra.Command{
		Use:   "import FILE...",
		Short: "Store articles as posts",
		Long: paragraph(fmt.Sprintf("\n%s markdown, HTML or plain text articles into the local post store. "+
			"The title is the first markdown heading, or the file name.", keyword("Import"))),
		Example: paragraph("readaloud import posts/*.md\nreadaloud import about.html --type page --status draft"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importFiles(cmd.Context(), cmd, args)
		},
	}
)

var fileTitle = cases.Title(language.English)

func importFiles(ctx context.Context, cmd *cobra.Command, paths []string) error {
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	brand, err := config.LoadBrand(viper.GetViper())
	if err != nil {
		return err
	}

	posts, err := store.Open(ctx, srvCfg.DB)
	if err != nil {
		return err
	}
	defer posts.Close() //nolint:errcheck

	for _, path := range paths {
		p, err := postFromFile(path)
		if err != nil {
			return err
		}
		if err := posts.Insert(ctx, p); err != nil {
			return fmt.Errorf("unable to import %s: %w", path, err)
		}

		text, err := sentence.ExtractText(p.Content, sentenceOptions(brand))
		if err != nil {
			return err
		}
		words := sentence.CountWords(text)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
			keyword(fmt.Sprintf("#%d", p.ID)),
			p.Title,
			faint(fmt.Sprintf("(%s words, %s, %s)", humanize.Comma(int64(words)), p.PostType, p.Status)),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), faint("Database: "+srvCfg.DB))
	return nil
}

func postFromFile(path string) (*store.Post, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read article: %w", err)
	}

	p := &store.Post{
		PostType:      config.SanitizeKey(importType),
		Status:        importStatus,
		Author:        importAuthor,
		FeaturedImage: importImage,
	}

	switch articleKind(path, b) {
	case "html":
		p.Content = string(b)
	case "text":
		var paras []string
		for _, para := range strings.Split(strings.TrimSpace(string(b)), "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				paras = append(paras, "<p>"+html.EscapeString(para)+"</p>")
			}
		}
		p.Content = strings.Join(paras, "\n")
	default:
		p.Title = sentence.MarkdownTitle(b)
		if p.Content, err = sentence.RenderMarkdown(b); err != nil {
			return nil, err
		}
	}

	if p.Title == "" {
		p.Title = titleFromPath(path)
	}
	return p, nil
}

// titleFromPath turns "my-first_post.md" into "My First Post".
func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return fileTitle.String(strings.Join(strings.Fields(name), " "))
}

func init() {
	importCmd.Flags().StringVar(&importType, "type", "post", "post type")
	importCmd.Flags().StringVar(&importStatus, "status", store.StatusPublish, "post status, publish or draft")
	importCmd.Flags().StringVar(&importAuthor, "author", "", "author name")
	importCmd.Flags().StringVar(&importImage, "featured-image", "", "featured image URL")
}
