package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-crop-mcp/internal/imaging"
	"github.com/ironsheep/image-crop-mcp/internal/session"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Print an image's dimensions, format, and color mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := imaging.LoadImageInfo(imaging.NewImageCache(nil), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}

func newCropCmd(a *app) *cobra.Command {
	var (
		x1, y1, x2, y2 int
		region         string
		format         string
	)

	cmd := &cobra.Command{
		Use:   "crop <input> <output>",
		Short: "Crop a rectangle or named region and save it",
		Long: `Crops the input image and writes the result.

Give either a rectangle in image pixels (--x1 --y1 --x2 --y2, corners in any
order, clamped to the image) or a named --region.`,
		Example: `  image-crop-mcp crop photo.jpg face.png --x1 120 --y1 80 --x2 520 --y2 480
  image-crop-mcp crop scan.png corner.png --region top-left`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormatFlag(format)
			if err != nil {
				return err
			}
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}

			if region != "" {
				if err := s.CropNamed(region); err != nil {
					return err
				}
			} else {
				rectSet := cmd.Flags().Changed("x1") || cmd.Flags().Changed("y1") ||
					cmd.Flags().Changed("x2") || cmd.Flags().Changed("y2")
				if !rectSet {
					return errors.New("give --region or a rectangle (--x1 --y1 --x2 --y2)")
				}
				ok, err := s.CropRegion(imaging.Region{X1: x1, Y1: y1, X2: x2, Y2: y2})
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("rectangle (%d,%d)-(%d,%d) has no area inside the image", x1, y1, x2, y2)
				}
			}

			res, err := s.Save(args[1], f, session.SaveAsIs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&x1, "x1", 0, "Left edge X coordinate")
	cmd.Flags().IntVar(&y1, "y1", 0, "Top edge Y coordinate")
	cmd.Flags().IntVar(&x2, "x2", 0, "Right edge X coordinate (exclusive)")
	cmd.Flags().IntVar(&y2, "y2", 0, "Bottom edge Y coordinate (exclusive)")
	cmd.Flags().StringVar(&region, "region", "", "Named region: top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half, center")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: jpeg or png (default from the output extension)")
	for _, edge := range []string{"x1", "y1", "x2", "y2"} {
		cmd.MarkFlagsMutuallyExclusive("region", edge)
	}

	return cmd
}

func newCenterCropCmd(a *app) *cobra.Command {
	var (
		width, height int
		cx, cy        int
		format        string
	)

	cmd := &cobra.Command{
		Use:   "center-crop <input> <output>",
		Short: "Crop a fixed-size window around a center point",
		Long: `Crops a width x height window centered on (--cx, --cy), or on the image
center when no point is given. The window is clipped at the image edges, so
the output may be smaller than requested.`,
		Example: `  image-crop-mcp center-crop photo.jpg thumb.jpg --width 400 --height 300
  image-crop-mcp center-crop photo.jpg eye.png --width 200 --height 200 --cx 640 --cy 360`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormatFlag(format)
			if err != nil {
				return err
			}
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("cx") || cmd.Flags().Changed("cy") {
				ok, err := s.SetCenterImagePoint(cx, cy)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("center (%d,%d) is outside the image", cx, cy)
				}
			}

			ok, err := s.CenterCrop(width, height)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("crop window has no area inside the image")
			}

			res, err := s.Save(args[1], f, session.SaveAsIs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Window width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Window height in pixels")
	cmd.Flags().IntVar(&cx, "cx", 0, "Center X in image pixels (default image center)")
	cmd.Flags().IntVar(&cy, "cy", 0, "Center Y in image pixels (default image center)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: jpeg or png (default from the output extension)")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func newCompressCmd(a *app) *cobra.Command {
	var (
		targetKB    float64
		targetBytes int
		format      string
	)

	cmd := &cobra.Command{
		Use:   "compress <input> <output>",
		Short: "Re-encode an image to fit a byte budget",
		Long: `Searches encoder quality, then downscales, until the encoded image fits
the budget. When nothing fits, the smallest encoding found is written and the
result reports within_budget: false.`,
		Example: `  image-crop-mcp compress photo.png photo.jpg --target-kb 200
  image-crop-mcp compress logo.png small.png --target-bytes 50000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := targetBytes
			if target == 0 {
				target = int(targetKB * 1024)
			}
			if target <= 0 {
				return errors.New("give a positive --target-kb or --target-bytes")
			}

			f, err := parseFormatFlag(format)
			if err != nil {
				return err
			}
			if f == "" {
				if f, err = imaging.FormatFromPath(args[1]); err != nil {
					return err
				}
			}

			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			res, err := s.Compress(target, f)
			if err != nil {
				return err
			}

			// Write the searched bytes directly; re-encoding would change the size.
			if err := os.WriteFile(args[1], res.Data, 0o644); err != nil {
				return fmt.Errorf("%w: %w", session.ErrSaveFailed, err)
			}
			a.logger.Info("compressed image written", "path", args[1], "bytes", res.Bytes)
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Float64Var(&targetKB, "target-kb", 0, "Budget in kilobytes (1 KB = 1024 bytes)")
	cmd.Flags().IntVar(&targetBytes, "target-bytes", 0, "Budget in bytes (overrides --target-kb)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: jpeg or png (default from the output extension)")
	cmd.MarkFlagsOneRequired("target-kb", "target-bytes")

	return cmd
}
