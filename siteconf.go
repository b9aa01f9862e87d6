package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultExcerptLength = 90

type SiteConf struct {
	SiteTitle string `mapstructure:"site_title"`
	Author    string `mapstructure:"author"`
	AuthorUri string `mapstructure:"author_uri"`
	// Absolute URL the outdir is published at. Feeds are only written when set.
	BaseUrl string `mapstructure:"base_url"`

	OutDir           string `mapstructure:"out_dir"`
	CategoriesOutDir string `mapstructure:"categories_out_dir"`
	StaticFilesDir   string `mapstructure:"static_dir"`

	ExcerptLength int    `mapstructure:"excerpt_length"`
	BodyFormat    string `mapstructure:"body_format"`

	Categories []menuCategory `mapstructure:"categories"`
}

func newConfViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("site_title", "Blog")
	v.SetDefault("author", "")
	v.SetDefault("author_uri", "")
	v.SetDefault("base_url", "")
	v.SetDefault("out_dir", ".")
	v.SetDefault("static_dir", "")
	v.SetDefault("body_format", "")
	v.SetDefault("categories_out_dir", "categories")
	v.SetDefault("excerpt_length", defaultExcerptLength)

	v.SetEnvPrefix("BLOGCARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConf loads the site configuration. Without an explicit fileName a
// blogcard.yaml in the working directory is used if there is one; otherwise
// defaults and BLOGCARD_* environment variables apply.
func readConf(fileName string, log *zap.Logger) (*SiteConf, error) {
	v := newConfViper()
	if fileName != "" {
		v.SetConfigFile(fileName)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("blogcard")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if fileName != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	} else {
		log.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	}

	conf := SiteConf{}
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if conf.ExcerptLength <= 0 {
		conf.ExcerptLength = defaultExcerptLength
	}
	if conf.BaseUrl != "" && !strings.HasSuffix(conf.BaseUrl, "/") {
		conf.BaseUrl += "/"
	}

	// Normalize relative paths because the executable can be called from anywhere
	if used := v.ConfigFileUsed(); used != "" {
		baseDir := filepath.Dir(used)
		if v.InConfig("out_dir") {
			conf.OutDir = normalizePath(conf.OutDir, baseDir, log)
		}
		if v.InConfig("static_dir") {
			conf.StaticFilesDir = normalizePath(conf.StaticFilesDir, baseDir, log)
		}
	}

	return &conf, nil
}

func normalizePath(path, baseDir string, log *zap.Logger) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	absPath := filepath.Join(baseDir, path)
	log.Debug("Normalizing path", zap.String("path", path), zap.String("to", absPath))
	return absPath
}

func (c *SiteConf) templateParam() templateParam {
	tp := templateParam{
		SiteTitle: c.SiteTitle,
		Menu:      c.Categories,
	}
	if c.BaseUrl != "" {
		tp.FeedUrl = c.BaseUrl + "index.xml"
	}
	return tp
}
