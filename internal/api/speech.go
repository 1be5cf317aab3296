package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/internal/store"
	"github.com/wptts/readaloud/tts/sentence"
)

const (
	defaultPostType = "post"
	defaultPerPage  = 10
	maxPerPage      = 50
	excerptWords    = 30

	// ISO 8601 with a numeric offset.
	dateFormat = "2006-01-02T15:04:05-07:00"
)

// TTSSettings are the playback parameters a client applies to its engine.
type TTSSettings struct {
	SpeechRate float64 `json:"speech_rate"`
	Pitch      float64 `json:"pitch"`
	Volume     float64 `json:"volume"`
	VoiceName  string  `json:"voice_name"`
}

// SpeechDocument is an article prepared for native speech.
type SpeechDocument struct {
	PostID            int64       `json:"post_id"`
	Title             string      `json:"title"`
	PlainText         string      `json:"plain_text"`
	Sentences         []string    `json:"sentences"`
	SentenceCount     int         `json:"sentence_count"`
	WordCount         int         `json:"word_count"`
	EstimatedDuration int         `json:"estimated_duration_seconds"`
	TTSSettings       TTSSettings `json:"tts_settings"`
	Excerpt           string      `json:"excerpt"`
	FeaturedImage     *string     `json:"featured_image"`
	Author            string      `json:"author"`
	Date              string      `json:"date"`
}

// SettingsResponse is the /settings payload.
type SettingsResponse struct {
	TTSSettings      TTSSettings `json:"tts_settings"`
	EnabledPostTypes []string    `json:"enabled_post_types"`
}

// PostSummary is one /posts item.
type PostSummary struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Excerpt           string  `json:"excerpt"`
	WordCount         int     `json:"word_count"`
	EstimatedDuration int     `json:"estimated_duration_seconds"`
	FeaturedImage     *string `json:"featured_image"`
	Author            string  `json:"author"`
	Date              string  `json:"date"`
	SpeechEndpoint    string  `json:"speech_endpoint"`
}

// PostList is the /posts payload.
type PostList struct {
	Posts      []PostSummary `json:"posts"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// FormatSettings extracts the playback parameters.
func FormatSettings(s config.Settings) TTSSettings {
	return TTSSettings{
		SpeechRate: s.SpeechRate,
		Pitch:      s.Pitch,
		Volume:     s.Volume,
		VoiceName:  s.VoiceName,
	}
}

// PlainText returns the readable text of a post's content with every block
// element closed by a sentence break.
func PlainText(brand config.Brand, p *store.Post) (string, error) {
	return sentence.ExtractText(p.Content, sentence.Options{
		ExcludeClass:     brand.PlayerClass(),
		BlockPunctuation: true,
	})
}

// BuildDocument prepares a post for speech.
func BuildDocument(brand config.Brand, p *store.Post, settings config.Settings) (*SpeechDocument, error) {
	plain, err := PlainText(brand, p)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text of post %d: %w", p.ID, err)
	}

	sentences := sentence.Split(plain)
	if sentences == nil {
		sentences = []string{}
	}
	ts := FormatSettings(settings)

	return &SpeechDocument{
		PostID:            p.ID,
		Title:             p.Title,
		PlainText:         plain,
		Sentences:         sentences,
		SentenceCount:     len(sentences),
		WordCount:         sentence.CountWords(plain),
		EstimatedDuration: sentence.EstimateDuration(plain, ts.SpeechRate),
		TTSSettings:       ts,
		Excerpt:           excerpt(p, plain),
		FeaturedImage:     nullable(p.FeaturedImage),
		Author:            p.Author,
		Date:              p.PublishedAt.Format(dateFormat),
	}, nil
}

func excerpt(p *store.Post, plain string) string {
	if p.Excerpt != "" {
		if text, err := sentence.ExtractText(p.Excerpt, sentence.Options{}); err == nil {
			return text
		}
	}
	return sentence.TrimWords(plain, excerptWords, "...")
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) getSpeech(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, invalidParams(map[string]string{"id": "id must be a positive integer."}))
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.internalError(w, err)
		return
	}
	if post == nil || !post.Published() {
		writeError(w, &Error{
			Code:    s.brand.Code("post_not_found"),
			Message: "Post not found or not published.",
			Data:    ErrorData{Status: http.StatusNotFound},
		})
		return
	}

	settings := s.Settings()
	if !settings.PostTypeEnabled(post.PostType) {
		writeError(w, s.notEnabled())
		return
	}

	key := fmt.Sprintf("speech:%d:%d", post.ID, post.ModifiedAt.UnixNano())
	if body, ok := s.docs.Get(key); ok {
		writeBody(w, body)
		return
	}

	doc, err := BuildDocument(s.brand, post, settings)
	if err != nil {
		s.internalError(w, err)
		return
	}
	body, err := json.Marshal(doc)
	if err != nil {
		s.internalError(w, err)
		return
	}
	body = append(body, '\n')

	// oversized documents are served uncached
	_ = s.docs.Put(key, body)
	writeBody(w, body)
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	settings := s.Settings()
	types := settings.EnabledPostTypes
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, SettingsResponse{
		TTSSettings:      FormatSettings(settings),
		EnabledPostTypes: types,
	})
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invalid := map[string]string{}

	postType := defaultPostType
	if v := q.Get("post_type"); v != "" {
		postType = config.SanitizeKey(v)
	}
	perPage, ok := intParam(q.Get("per_page"), defaultPerPage, 1, maxPerPage)
	if !ok {
		invalid["per_page"] = fmt.Sprintf("per_page must be between 1 and %d.", maxPerPage)
	}
	page, ok := intParam(q.Get("page"), 1, 1, math.MaxInt32)
	if !ok {
		invalid["page"] = "page must be a positive integer."
	}
	if len(invalid) > 0 {
		writeError(w, invalidParams(invalid))
		return
	}
	search := strings.Join(strings.Fields(q.Get("search")), " ")

	settings := s.Settings()
	if !settings.PostTypeEnabled(postType) {
		writeError(w, s.notEnabled())
		return
	}

	posts, total, err := s.posts.List(r.Context(), store.Query{
		PostType: postType,
		Status:   store.StatusPublish,
		Search:   search,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		s.internalError(w, err)
		return
	}

	rate := FormatSettings(settings).SpeechRate
	list := PostList{
		Posts:      make([]PostSummary, 0, len(posts)),
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
		Page:       page,
		PerPage:    perPage,
	}
	for i := range posts {
		p := &posts[i]
		plain, err := PlainText(s.brand, p)
		if err != nil {
			s.logger.Warn("Could not extract post text", "post", p.ID, "err", err)
		}
		list.Posts = append(list.Posts, PostSummary{
			ID:                p.ID,
			Title:             p.Title,
			Excerpt:           excerpt(p, plain),
			WordCount:         sentence.CountWords(plain),
			EstimatedDuration: sentence.EstimateDuration(plain, rate),
			FeaturedImage:     nullable(p.FeaturedImage),
			Author:            p.Author,
			Date:              p.PublishedAt.Format(dateFormat),
			SpeechEndpoint:    s.endpoint(r, p.ID),
		})
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) notEnabled() *Error {
	return &Error{
		Code:    s.brand.Code("not_enabled"),
		Message: "Text-to-speech is not enabled for this post type.",
		Data:    ErrorData{Status: http.StatusForbidden},
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("Request failed", "err", err)
	writeError(w, &Error{
		Code:    s.brand.Code("internal_error"),
		Message: "Internal server error.",
		Data:    ErrorData{Status: http.StatusInternalServerError},
	})
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// intParam parses an optional integer query parameter.
func intParam(raw string, def, lo, hi int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return def, false
	}
	return v, true
}
