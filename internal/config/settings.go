package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/handiism/audio-info-updater/internal/model"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. AIU_BEAUTIFY=false.
const EnvPrefix = "AIU"

// Settings holds all configuration options.
type Settings struct {
	// Merging
	MatchArtist    bool     `json:"match_artist" mapstructure:"match_artist"`
	PreferShared   []string `json:"prefer_shared" mapstructure:"prefer_shared"`     // fields or families (artist, album, track) where shared values win
	RequiredFields []string `json:"required_fields" mapstructure:"required_fields"` // fields every record must carry itself

	// Normalization
	Beautify           bool   `json:"beautify" mapstructure:"beautify"`
	StopwordsFile      string `json:"stopwords_file" mapstructure:"stopwords_file"`
	MatchStopwordsFile string `json:"match_stopwords_file" mapstructure:"match_stopwords_file"`
	ExceptionsFile     string `json:"exceptions_file" mapstructure:"exceptions_file"`

	// Matching
	MatchTemplates    []string `json:"match_templates" mapstructure:"match_templates"`
	UseTagMatch       bool     `json:"use_tag_match" mapstructure:"use_tag_match"`
	UseWordMatch      bool     `json:"use_word_match" mapstructure:"use_word_match"`
	TagMatchFields    []string `json:"tag_match_fields" mapstructure:"tag_match_fields"`
	TagMatchThreshold float64  `json:"tag_match_threshold" mapstructure:"tag_match_threshold"`
	TagMatchTie       float64  `json:"tag_match_tie" mapstructure:"tag_match_tie"`
	WordMatchOverlap  int      `json:"word_match_overlap" mapstructure:"word_match_overlap"`
	WordMatchTie      float64  `json:"word_match_tie" mapstructure:"word_match_tie"`
	Strict            bool     `json:"strict" mapstructure:"strict"`

	// Duplicates
	DetectDuplicates bool `json:"detect_duplicates" mapstructure:"detect_duplicates"`
	DeleteDuplicates bool `json:"delete_duplicates" mapstructure:"delete_duplicates"`

	// File naming
	Rename                 bool   `json:"rename" mapstructure:"rename"`
	FileNameFormat         string `json:"file_name_format" mapstructure:"file_name_format"`
	CoverArtFileNameFormat string `json:"cover_art_file_name_format" mapstructure:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format" mapstructure:"playlist_file_name_format"`

	// Tag settings
	ModifyTags    bool `json:"modify_tags" mapstructure:"modify_tags"`
	OverwriteTags bool `json:"overwrite_tags" mapstructure:"overwrite_tags"`
	Backup        bool `json:"backup" mapstructure:"backup"`
	DryRun        bool `json:"dry_run" mapstructure:"dry_run"`

	// Output configuration
	OutputFile   string `json:"output_file" mapstructure:"output_file"`
	OutputFormat string `json:"output_format" mapstructure:"output_format"` // yaml, json, csv, tab

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder" mapstructure:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags" mapstructure:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `json:"cover_art_in_folder_resize" mapstructure:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `json:"cover_art_in_folder_max_size" mapstructure:"cover_art_in_folder_max_size"`
	CoverArtInTagsResize    bool `json:"cover_art_in_tags_resize" mapstructure:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `json:"cover_art_in_tags_max_size" mapstructure:"cover_art_in_tags_max_size"`
	ConvertCoverArtToJPG    bool `json:"convert_cover_art_to_jpg" mapstructure:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" mapstructure:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" mapstructure:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended" mapstructure:"m3u_extended"`

	// Remote fetch settings
	DownloadsPath               string  `json:"downloads_path" mapstructure:"downloads_path"`
	MaxConcurrentCollections    int     `json:"max_concurrent_collections" mapstructure:"max_concurrent_collections"`
	MaxConcurrentTracksDownload int     `json:"max_concurrent_tracks" mapstructure:"max_concurrent_tracks"`
	DownloadMaxRetries          int     `json:"download_max_retries" mapstructure:"download_max_retries"`
	DownloadRetryCooldown       float64 `json:"download_retry_cooldown" mapstructure:"download_retry_cooldown"`
	DownloadRetryExponent       float64 `json:"download_retry_exponent" mapstructure:"download_retry_exponent"`
	AllowedFileSizeDifference   float64 `json:"allowed_file_size_difference" mapstructure:"allowed_file_size_difference"`
	DownloadArtistDiscography   bool    `json:"download_artist_discography" mapstructure:"download_artist_discography"`

	// Proxy settings
	ProxyType    string `json:"proxy_type" mapstructure:"proxy_type"` // none, system, manual
	ProxyAddress string `json:"proxy_address" mapstructure:"proxy_address"`
	ProxyPort    int    `json:"proxy_port" mapstructure:"proxy_port"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		MatchArtist:    true,
		PreferShared:   []string{},
		RequiredFields: []string{string(model.FieldTitle)},

		Beautify: true,

		MatchTemplates:    DefaultMatchTemplates(),
		UseTagMatch:       true,
		UseWordMatch:      true,
		TagMatchFields:    []string{string(model.FieldTitle)},
		TagMatchThreshold: 0.9,
		TagMatchTie:       0,
		WordMatchOverlap:  1,
		WordMatchTie:      0,

		DetectDuplicates: true,

		FileNameFormat:         "{tracknum} {title}",
		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",

		ModifyTags:    true,
		OverwriteTags: true,

		OutputFormat: "yaml",

		SaveCoverArtInTags:      true,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    true,

		PlaylistFormat: "m3u",
		M3UExtended:    true,

		DownloadsPath:               filepath.Join(homeDir, "Music", "{artist}", "{album}"),
		MaxConcurrentCollections:    1,
		MaxConcurrentTracksDownload: 10,
		DownloadMaxRetries:          7,
		DownloadRetryCooldown:       0.2,
		DownloadRetryExponent:       4.0,
		AllowedFileSizeDifference:   0.05,

		ProxyType: "system",
	}
}

// DefaultMatchTemplates returns the file name patterns tried by the
// matcher, in priority order.
func DefaultMatchTemplates() []string {
	return []string{
		"{artist} - {track:02} - {title}",
		"{track:02} - {title}",
		"{track:02} {title}",
		"{track:02}. {title}",
		"{tracknum} {artist} - {title}",
		"{artist} - {title}",
		"{title}",
	}
}

// Load reads settings from a JSON or YAML file, then applies AIU_*
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	v := viper.New()

	defaults := map[string]any{}
	raw, err := json.Marshal(DefaultSettings())
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &defaults); err != nil {
		return nil, err
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
			}
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return settings, nil
}

// Save writes settings to a file, as YAML when the extension is .yaml or
// .yml and as JSON otherwise.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToPlaylistFormat converts the configured playlist name to a PlaylistFormat.
func (s *Settings) ToPlaylistFormat() model.PlaylistFormat {
	return model.ParsePlaylistFormat(s.PlaylistFormat)
}

// Templates converts the configured match templates.
func (s *Settings) Templates() []model.Template {
	templates := make([]model.Template, 0, len(s.MatchTemplates))
	for _, t := range s.MatchTemplates {
		templates = append(templates, model.Template(t))
	}
	return templates
}

// Fields converts a list of field names, rejecting unknown ones.
func Fields(names []string) ([]model.Field, error) {
	fields := make([]model.Field, 0, len(names))
	for _, name := range names {
		f, ok := model.ParseField(name)
		if !ok {
			return nil, model.NewConfigurationError("unknown field %q", name)
		}
		fields = append(fields, f)
	}
	return fields, nil
}
