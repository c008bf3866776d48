package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"microlearn/internal/app"
	"microlearn/internal/client"
	"microlearn/internal/domain"
	"microlearn/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type generateOptions struct {
	audio  string
	image  string
	text   string
	prompt string
	output string
	format string
	remote bool
}

// bundleFile is what generate writes and study reads.
type bundleFile struct {
	SessionID   string                 `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Bundle      *domain.LearningBundle `json:"bundle" yaml:"bundle"`
	InputAudio  string                 `json:"input_audio,omitempty" yaml:"input_audio,omitempty"`
	Caption     string                 `json:"caption,omitempty" yaml:"caption,omitempty"`
	InputText   string                 `json:"input_text,omitempty" yaml:"input_text,omitempty"`
	InputPrompt string                 `json:"input_prompt,omitempty" yaml:"input_prompt,omitempty"`
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Turn local audio, image and text files into a learning bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != "json" && opts.format != "yaml" {
				return fmt.Errorf("unsupported format %q, use json or yaml", opts.format)
			}
			if opts.audio == "" && opts.image == "" && opts.text == "" && opts.prompt == "" {
				return fmt.Errorf("at least one of --audio, --image, --text or --prompt is required")
			}

			var (
				out *bundleFile
				err error
			)
			if opts.remote {
				out, err = generateRemote(cmd.Context(), root, opts)
			} else {
				out, err = generateLocal(cmd.Context(), root, opts)
			}
			if err != nil {
				return err
			}
			return writeBundleFile(cmd.OutOrStdout(), opts.output, opts.format, out)
		},
	}
	cmd.Flags().StringVar(&opts.audio, "audio", "", "lecture audio file")
	cmd.Flags().StringVar(&opts.image, "image", "", "slide or diagram image")
	cmd.Flags().StringVar(&opts.text, "text", "", "plain-text notes")
	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "free-form prompt")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the bundle to this file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json|yaml")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "generate on the API server and open a session")
	return cmd
}

func generateLocal(ctx context.Context, root *rootOptions, opts *generateOptions) (*bundleFile, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	pipeline, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer pipeline.Close()

	in := service.ContentInput{Prompt: opts.prompt}
	if in.Audio, err = readOptional(opts.audio); err != nil {
		return nil, err
	}
	in.AudioMIME = mimeFromPath(opts.audio)
	if in.Image, err = readOptional(opts.image); err != nil {
		return nil, err
	}
	in.ImageMIME = mimeFromPath(opts.image)
	if in.Text, err = readOptional(opts.text); err != nil {
		return nil, err
	}

	content := service.NewContentService(pipeline.Generator, pipeline.Transcriber, pipeline.Captioner, nil, 0, nil)
	res, err := content.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	return &bundleFile{
		Bundle:      res.Bundle,
		InputAudio:  res.Transcript,
		Caption:     res.Caption,
		InputText:   res.InputText,
		InputPrompt: res.InputPrompt,
	}, nil
}

func generateRemote(ctx context.Context, root *rootOptions, opts *generateOptions) (*bundleFile, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	req := client.ProcessRequest{Prompt: opts.prompt}
	for _, f := range []struct {
		path string
		dst  **client.Upload
	}{{opts.audio, &req.Audio}, {opts.image, &req.Image}, {opts.text, &req.Text}} {
		data, err := readOptional(f.path)
		if err != nil {
			return nil, err
		}
		if data != nil {
			*f.dst = &client.Upload{Filename: filepath.Base(f.path), Data: data}
		}
	}

	res, err := client.NewFromConfig(cfg.Client).Process(ctx, req)
	if err != nil {
		return nil, err
	}
	return &bundleFile{
		SessionID:   res.SessionID,
		Bundle:      res.Bundle,
		InputAudio:  res.InputAudio,
		Caption:     res.Caption,
		InputText:   res.InputText,
		InputPrompt: res.InputPrompt,
	}, nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return ""
}

func writeBundleFile(stdout io.Writer, path, format string, out *bundleFile) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(out)
	} else {
		data, err = json.MarshalIndent(out, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "bundle %s written to %s\n", out.Bundle.ID, path)
	return nil
}

// readBundleFile accepts generate output in JSON or YAML, or a bare bundle.
func readBundleFile(path string) (*bundleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f bundleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Bundle == nil {
		var b domain.LearningBundle
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		f.Bundle = &b
	}
	if len(f.Bundle.Questions) == 0 && len(f.Bundle.Flashcards) == 0 && f.Bundle.Summary == "" {
		return nil, fmt.Errorf("%s does not contain a learning bundle", path)
	}
	return &f, nil
}
