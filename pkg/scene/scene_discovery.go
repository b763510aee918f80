package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// Scene source types
const (
	TypeBuiltin = "builtin"
	TypeFile    = "file"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by CreateScene
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the YAML file (file type only)
}

// builtinScene pairs a scene's metadata with the function that describes it
type builtinScene struct {
	name string
	file func() *SceneFile
}

// builtinScenes lists the scenes compiled into the binary, in display order
var builtinScenes = []builtinScene{
	{"default", NewDefaultSceneFile},
	{"diffuse", NewDiffuseSceneFile},
	{"random", func() *SceneFile { return NewRandomSceneFile(RandomSceneSeed) }},
}

// ScenesDirs are the directories searched for YAML scene files
var ScenesDirs = []string{"scenes", "../scenes"}

// ListBuiltinScenes returns the scenes compiled into the binary
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		f := b.file()
		scenes = append(scenes, SceneInfo{
			ID:          b.name,
			Name:        f.Name,
			DisplayName: titleCase(b.name),
			Description: f.Description,
			Type:        TypeBuiltin,
		})
	}
	return scenes
}

// ListFileScenes scans dir for YAML scene files. A missing directory yields an empty list.
func ListFileScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Skip unreadable files, keep listing the rest
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name and description of a YAML scene file
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	f, err := LoadSceneFile(filePath)
	if err != nil {
		return SceneInfo{}, err
	}

	info := SceneInfo{
		ID:          filePath,
		Name:        f.Name,
		DisplayName: titleCase(nameWithoutExt),
		Description: f.Description,
		Type:        TypeFile,
		FilePath:    filePath,
	}
	if f.Name != "" {
		info.DisplayName = titleCase(f.Name)
	} else {
		info.Name = nameWithoutExt
	}

	return info, nil
}

// ListScenes returns the built-in scenes followed by the scene files found in ScenesDirs
func ListScenes() ([]SceneInfo, error) {
	scenes := ListBuiltinScenes()

	for _, dir := range ScenesDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		fileScenes, err := ListFileScenes(dir)
		if err != nil {
			return scenes, fmt.Errorf("failed to list scene files: %w", err)
		}
		scenes = append(scenes, fileScenes...)
		break
	}

	return scenes, nil
}

// IsSceneFilePath reports whether name refers to a YAML file rather than a built-in scene
func IsSceneFilePath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// LookupSceneFile returns the description of a built-in scene or loads a YAML file
func LookupSceneFile(name string) (*SceneFile, error) {
	if IsSceneFilePath(name) {
		return LoadSceneFile(name)
	}

	for _, b := range builtinScenes {
		if b.name == name {
			return b.file(), nil
		}
	}

	return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(builtinNames(), ", "))
}

// CreateScene builds the scene with the given built-in name or YAML file path.
// An optional camera override replaces the scene camera's non-zero fields.
func CreateScene(name string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	f, err := LookupSceneFile(name)
	if err != nil {
		return nil, err
	}
	if len(cameraOverrides) > 0 {
		if err := f.ApplyCameraOverride(cameraOverrides[0]); err != nil {
			return nil, fmt.Errorf("scene %q: %w", name, err)
		}
	}

	s, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}
	if s.Name == "" {
		s.Name = SceneSlug(name)
	}
	return s, nil
}

// SceneSlug turns a scene name or file path into a directory-safe identifier
func SceneSlug(name string) string {
	if IsSceneFilePath(name) {
		base := filepath.Base(name)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

func builtinNames() []string {
	names := make([]string, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		names = append(names, b.name)
	}
	return names
}

// titleCase converts a filename-style string to title case
// e.g., "glass-row" -> "Glass Row"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
