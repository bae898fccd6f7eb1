package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"past/category"
)

// RulesFetcher downloads shared category rule files
type RulesFetcher struct {
	client *resty.Client
}

// NewRulesFetcher creates a fetcher with the given request timeout
func NewRulesFetcher(timeout time.Duration) *RulesFetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/yaml, text/yaml, text/plain")
	client.SetHeader("User-Agent", "past/"+GetVersionShort())
	return &RulesFetcher{client: client}
}

// Fetch downloads a rules file and validates it before returning it
func (f *RulesFetcher) Fetch(ctx context.Context, url string) ([]byte, []category.Rule, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download rules: %w", err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("failed to download rules: %s returned %s", url, resp.Status())
	}

	data := resp.Body()
	rules, err := category.ParseRules(data)
	if err != nil {
		return nil, nil, fmt.Errorf("downloaded rules are invalid: %w", err)
	}
	if _, err := category.NewTable(rules); err != nil {
		return nil, nil, fmt.Errorf("downloaded rules are invalid: %w", err)
	}
	return data, rules, nil
}

// installRules replaces the rules file at path, keeping the previous one as path.bak
func installRules(path string, data []byte) error {
	path, err := category.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".rules-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to stage rules: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage rules: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to stage rules: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to stage rules: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("failed to back up existing rules: %w", err)
		}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install rules: %w", err)
	}
	return nil
}
