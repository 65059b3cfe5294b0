// Command vgctl drives the gallery API from the shell.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"veogallery/internal/domain"
	"veogallery/internal/infra"
	"veogallery/internal/jobs"
	"veogallery/internal/media"
	"veogallery/pkg/client"
)

const defaultAPI = "http://localhost:8080/api"

const usage = `usage: vgctl [-api URL] <command> [flags]

commands:
  generate   start a generation job (-wait to block until it finishes)
  status     print a job's status
  merge      merge audio into a video and write the mp4
  publish    publish a video to YouTube
  sounds     list trending sounds
  enhance    rewrite a prompt for video generation
`

func main() {
	_ = godotenv.Load()

	api := flag.String("api", envOr("VEOGALLERY_API", defaultAPI), "API base URL")
	verbose := flag.Bool("v", false, "log poll attempts")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	opts := []client.Option{}
	if *verbose {
		opts = append(opts, client.WithLogger(infra.NewLogger("development", "debug").With().Str("cmd", "vgctl").Logger()))
	}
	c, err := client.New(*api, opts...)
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "generate":
		err = runGenerate(ctx, c, args)
	case "status":
		err = runStatus(ctx, c, args)
	case "merge":
		err = runMerge(ctx, c, args)
	case "publish":
		err = runPublish(ctx, c, args)
	case "sounds":
		err = runSounds(ctx, c, args)
	case "enhance":
		err = runEnhance(ctx, c, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func runGenerate(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	prompt := fs.String("prompt", "", "text prompt (required)")
	aspect := fs.String("aspect", domain.DefaultAspect, "16:9, 1:1 or 9:16")
	seconds := fs.Float64("seconds", domain.DefaultSeconds, "clip length in seconds")
	steps := fs.Int("steps", domain.DefaultSteps, "sampling steps")
	wait := fs.Bool("wait", false, "poll until the job finishes")
	interval := fs.Duration("interval", jobs.DefaultPollInterval, "poll interval with -wait")
	timeout := fs.Duration("timeout", 10*time.Minute, "give up waiting after this long (0 waits forever)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*prompt) == "" {
		return fmt.Errorf("-prompt is required")
	}
	id, err := c.Generate(ctx, domain.GenerateRequest{
		Prompt:  *prompt,
		Aspect:  *aspect,
		Seconds: seconds,
		Steps:   steps,
	})
	if err != nil {
		return err
	}
	fmt.Println(id)
	if !*wait {
		return nil
	}

	url, err := c.Wait(ctx, id, jobs.Policy{Interval: *interval, Deadline: *timeout, Jitter: 0.1})
	if err != nil {
		return fmt.Errorf("job %s: %w", id, err)
	}
	fmt.Println(url)
	return nil
}

func runStatus(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: vgctl status <job-id>")
	}
	view, err := c.JobStatus(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printJSON(view)
}

func runMerge(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	video := fs.String("video", "", "video URL (required)")
	audio := fs.String("audio", "", "audio URL; empty uses a generated bed")
	choice := fs.String("generated", string(domain.AudioTone), "generated bed when -audio is empty: tone or silence")
	volume := fs.Float64("volume", -1, "audio gain, 0 to 5 (negative keeps the source level)")
	out := fs.String("out", "merged.mp4", "output file")
	_ = fs.Parse(args)

	req := domain.MergeRequest{VideoURL: *video, AudioURL: *audio, AudioChoice: domain.AudioChoice(*choice)}
	if *volume >= 0 {
		req.Volume = volume
	}
	dataURL, err := c.MergeAudio(ctx, req)
	if err != nil {
		return err
	}
	_, data, err := media.DecodeDataURL(dataURL)
	if err != nil {
		return fmt.Errorf("decode merged video: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

func runPublish(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	video := fs.String("video", "", "video URL (required)")
	title := fs.String("title", "", "video title")
	description := fs.String("description", "", "video description")
	tags := fs.String("tags", "", "comma separated tags")
	_ = fs.Parse(args)

	req := domain.PublishRequest{VideoURL: *video, Title: *title, Description: *description}
	for _, t := range strings.Split(*tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			req.Tags = append(req.Tags, t)
		}
	}
	res, err := c.Publish(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runSounds(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("sounds", flag.ExitOnError)
	provider := fs.String("provider", "", "curated, deezer or itunes")
	region := fs.String("region", "", "two letter region code")
	_ = fs.Parse(args)

	list, err := c.TrendingSounds(ctx, *provider, *region)
	if err != nil {
		return err
	}
	for _, s := range list {
		fmt.Printf("%-24s %-32s %-24s %3ds %s\n", s.ID, s.Title, s.Artist, s.DurationSec, s.AudioURL)
	}
	return nil
}

func runEnhance(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("enhance", flag.ExitOnError)
	prompt := fs.String("prompt", "", "prompt to rewrite (required)")
	_ = fs.Parse(args)

	res, err := c.EnhancePrompt(ctx, *prompt)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "vgctl: %v\n", err)
	os.Exit(1)
}
