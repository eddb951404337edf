package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/streetlevel/streetlevel/pkg/baidu"
	"github.com/streetlevel/streetlevel/pkg/fetch"
	"github.com/streetlevel/streetlevel/pkg/kakao"
	"github.com/streetlevel/streetlevel/pkg/naver"
	"github.com/streetlevel/streetlevel/pkg/streetside"
	"github.com/streetlevel/streetlevel/pkg/streetview"
	"github.com/streetlevel/streetlevel/pkg/yandex"
)

var downloadCmd = &cobra.Command{
	Use:   "download <provider>",
	Short: "Download and stitch a panorama",
	Long: `Download a panorama by ID, stitch its tiles and write it as PNG.

Examples:
  streetlevel download streetview --id sQpGYOQ-ycLWFYG3EfAIGA --zoom 3 -o pano.png
  streetlevel download streetside --id 362360659 --zoom 2 -o pano.png
  streetlevel download baidu --id 09002200122003201316215107V -o pano.png`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().String("id", "", "panorama ID (required)")
	downloadCmd.Flags().Int("zoom", 0, "zoom level, 0 is the smallest image")
	downloadCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	downloadCmd.MarkFlagRequired("id")
}

func runDownload(cmd *cobra.Command, args []string) error {
	provider := args[0]
	id, _ := cmd.Flags().GetString("id")
	zoom, _ := cmd.Flags().GetInt("zoom")
	output, _ := cmd.Flags().GetString("output")
	locale := viper.GetString("locale")

	client := fetch.NewClient(fetch.WithUserAgent(viper.GetString("user-agent")))
	defer client.Close()
	ctx := cmd.Context()

	var img image.Image
	switch provider {
	case "streetview":
		p, err := streetview.FindPanoramaByID(ctx, client, id, locale)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("no panorama with ID %s", id)
		}
		img, err = streetview.GetPanorama(ctx, client, p, zoom)
		if err != nil {
			return err
		}
	case "streetside":
		panoid, err := parseNumericID(provider, id)
		if err != nil {
			return err
		}
		img, err = streetside.GetPanorama(ctx, client, panoid, zoom)
		if err != nil {
			return err
		}
	case "yandex":
		p, err := yandex.FindPanoramaByID(ctx, client, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("no panorama with ID %s", id)
		}
		img, err = yandex.GetPanorama(ctx, client, p, zoom)
		if err != nil {
			return err
		}
	case "kakao":
		panoid, err := parseNumericID(provider, id)
		if err != nil {
			return err
		}
		p, err := kakao.FindPanoramaByID(ctx, client, panoid, false)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("no panorama with ID %s", id)
		}
		img, err = kakao.GetPanorama(ctx, client, p, zoom)
		if err != nil {
			return err
		}
	case "naver":
		p, err := naver.FindPanoramaByID(ctx, client, id, "en", false, false)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("no panorama with ID %s", id)
		}
		img, err = naver.GetPanorama(ctx, client, p, zoom)
		if err != nil {
			return err
		}
	case "baidu":
		p, err := baidu.FindPanoramaByID(ctx, client, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("no panorama with ID %s", id)
		}
		img, err = baidu.GetPanorama(ctx, client, p, zoom)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown provider: %s", provider)
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("writing PNG: %v", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
	}
	return nil
}
