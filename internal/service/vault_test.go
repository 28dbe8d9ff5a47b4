package service

import (
	"testing"

	"runvault/internal/models"
)

func folder(name, slug, folderType string) models.Folder {
	return models.Folder{Name: name, Slug: slug, Type: folderType}
}

func TestSortSubfolders(t *testing.T) {
	t.Run("under root, runs first newest date first then custom alphabetical", func(t *testing.T) {
		folders := []models.Folder{
			folder("Archive", "archive", models.FolderTypeCustom),
			folder("Feb 15", "run_2025-02-15", models.FolderTypeRun),
			folder("Mar 1", "run_2025-03-01", models.FolderTypeRun),
			folder("Banners", "banners", models.FolderTypeCustom),
			folder("Feb 15", "run_2025-02-15_1", models.FolderTypeRun),
		}

		sortSubfolders(folders, models.FolderTypeRoot)

		want := []string{
			"run_2025-03-01",
			"run_2025-02-15_1",
			"run_2025-02-15",
			"archive",
			"banners",
		}
		for i, slug := range want {
			if folders[i].Slug != slug {
				t.Errorf("position %d: got %q, want %q", i, folders[i].Slug, slug)
			}
		}
	})

	t.Run("inside a custom folder, plain alphabetical", func(t *testing.T) {
		folders := []models.Folder{
			folder("Zebra", "zebra", models.FolderTypeCustom),
			folder("Mar 1", "run_2025-03-01", models.FolderTypeRun),
			folder("Apple", "apple", models.FolderTypeCustom),
		}

		sortSubfolders(folders, models.FolderTypeCustom)

		want := []string{"Apple", "Mar 1", "Zebra"}
		for i, name := range want {
			if folders[i].Name != name {
				t.Errorf("position %d: got %q, want %q", i, folders[i].Name, name)
			}
		}
	})

	t.Run("stable for equal names", func(t *testing.T) {
		folders := []models.Folder{
			folder("Same", "same-1", models.FolderTypeCustom),
			folder("Same", "same-2", models.FolderTypeCustom),
		}

		sortSubfolders(folders, models.FolderTypeCustom)

		if folders[0].Slug != "same-1" || folders[1].Slug != "same-2" {
			t.Errorf("equal names must keep input order, got %q then %q",
				folders[0].Slug, folders[1].Slug)
		}
	})
}
