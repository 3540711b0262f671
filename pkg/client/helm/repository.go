package helm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	helmcli "helm.sh/helm/v4/pkg/cli"
	helmgetter "helm.sh/helm/v4/pkg/getter"
	repov1 "helm.sh/helm/v4/pkg/repo/v1"
)

const (
	repoDirMode  = 0o750
	repoFileMode = 0o640
)

// AddRepository registers a chart repository locally and downloads its index.
func (c *Client) AddRepository(ctx context.Context, entry *RepositoryEntry) error {
	if entry == nil {
		return errRepositoryEntryRequired
	}

	if entry.Name == "" {
		return errRepositoryNameRequired
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("add repository aborted: %w", ctxErr)
	}

	repoFile, err := ensureRepositoryConfig(c.settings)
	if err != nil {
		return err
	}

	repoCache, err := ensureRepositoryCache(c.settings)
	if err != nil {
		return err
	}

	repoEntry := &repov1.Entry{
		Name:     entry.Name,
		URL:      entry.URL,
		Username: entry.Username,
		Password: entry.Password,
	}

	chartRepository, err := repov1.NewChartRepository(repoEntry, helmgetter.All(c.settings))
	if err != nil {
		return fmt.Errorf("create chart repository: %w", err)
	}

	chartRepository.CachePath = repoCache

	indexPath, err := chartRepository.DownloadIndexFile()
	if err != nil {
		return fmt.Errorf("download repository index: %w", err)
	}

	_, statErr := os.Stat(indexPath)
	if statErr != nil {
		return fmt.Errorf("verify repository index: %w", statErr)
	}

	repositoryFile := loadOrInitRepositoryFile(repoFile)
	repositoryFile.Update(repoEntry)

	writeErr := repositoryFile.WriteFile(repoFile, repoFileMode)
	if writeErr != nil {
		return fmt.Errorf("write repository file: %w", writeErr)
	}

	return nil
}

func ensureRepositoryConfig(settings *helmcli.EnvSettings) (string, error) {
	repoFile := settings.RepositoryConfig

	if envRepoConfig := os.Getenv("HELM_REPOSITORY_CONFIG"); envRepoConfig != "" {
		repoFile = envRepoConfig
		settings.RepositoryConfig = envRepoConfig
	}

	if repoFile == "" {
		return "", errRepositoryConfigUnset
	}

	mkdirErr := os.MkdirAll(filepath.Dir(repoFile), repoDirMode)
	if mkdirErr != nil {
		return "", fmt.Errorf("create repository directory: %w", mkdirErr)
	}

	return repoFile, nil
}

func ensureRepositoryCache(settings *helmcli.EnvSettings) (string, error) {
	repoCache := settings.RepositoryCache

	if envCache := os.Getenv("HELM_REPOSITORY_CACHE"); envCache != "" {
		repoCache = envCache
		settings.RepositoryCache = envCache
	}

	if repoCache == "" {
		return "", errRepositoryCacheUnset
	}

	mkdirErr := os.MkdirAll(repoCache, repoDirMode)
	if mkdirErr != nil {
		return "", fmt.Errorf("create repository cache directory: %w", mkdirErr)
	}

	return repoCache, nil
}

func loadOrInitRepositoryFile(repoFile string) *repov1.File {
	repositoryFile, err := repov1.LoadFile(repoFile)
	if err != nil {
		return repov1.NewFile()
	}

	return repositoryFile
}
