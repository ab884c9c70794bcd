package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "image/color"
  "math/rand"
  "os"
  "strings"

  "github.com/disintegration/imaging"
  "github.com/fogleman/gg"
  "github.com/golang/freetype/truetype"
  "golang.org/x/image/font"

  "github.com/basespeak/basespeak-backend/internal/logger"
  "github.com/basespeak/basespeak-backend/internal/types"
)

// PosterService produces the still image shown while an avatar is idle and no
// idle clip exists. Image-based avatars get a fitted crop of their base
// media; everything else gets an initials placard.
type PosterService interface {
  CreateAndUploadPoster(ctx context.Context, avatar *types.Avatar, baseImage []byte) error
}

type posterService struct {
  log           *logger.Logger
  bucketService BucketService
  bgColors      []color.NRGBA
  fontFace      font.Face
}

const posterSize = 512

func NewPosterService(log *logger.Logger, bucketService BucketService) (PosterService, error) {
  serviceLog := log.With("service", "PosterService")

  colorsJSONPath := os.Getenv("POSTER_COLORS_JSON_PATH")
  if colorsJSONPath == "" {
    return nil, fmt.Errorf("env var POSTER_COLORS_JSON_PATH is empty")
  }
  serviceLog.Info("Loading poster colors from JSON file", "path", colorsJSONPath)
  bgColors, err := loadColorsFromFile(colorsJSONPath)
  if err != nil {
    return nil, fmt.Errorf("could not load poster colors: %w", err)
  }

  fontPath := os.Getenv("POSTER_FONT")
  if fontPath == "" {
    return nil, fmt.Errorf("env var POSTER_FONT is empty")
  }
  serviceLog.Info("Loading poster font from TTF file", "font", fontPath)
  face, err := loadFontFace(fontPath, 206)
  if err != nil {
    return nil, fmt.Errorf("could not load poster font: %w", err)
  }

  return &posterService{
    log:           serviceLog,
    bucketService: bucketService,
    bgColors:      bgColors,
    fontFace:      face,
  }, nil
}

func (ps *posterService) CreateAndUploadPoster(ctx context.Context, avatar *types.Avatar, baseImage []byte) error {
  var buf bytes.Buffer
  var err error
  if avatar.BaseKind == types.BaseKindImage && len(baseImage) > 0 {
    buf, err = ps.generateFromBase(baseImage)
  } else {
    buf, err = ps.generateInitialsPlacard(avatar.Name)
  }
  if err != nil {
    return err
  }

  bucketKey := fmt.Sprintf("posters/%s.png", avatar.ID.String())
  publicURL, err := ps.bucketService.UploadFile(ctx, bucketKey, bytes.NewReader(buf.Bytes()), "image/png")
  if err != nil {
    return fmt.Errorf("Failed to upload avatar poster: %w", err)
  }
  avatar.PosterPath = bucketKey
  avatar.PosterURL = publicURL
  return nil
}

func (ps *posterService) generateFromBase(baseImage []byte) (bytes.Buffer, error) {
  img, err := imaging.Decode(bytes.NewReader(baseImage))
  if err != nil {
    return bytes.Buffer{}, fmt.Errorf("failed to decode base image: %w", err)
  }
  fitted := imaging.Fill(img, posterSize, posterSize, imaging.Center, imaging.Lanczos)

  var buf bytes.Buffer
  if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
    return buf, fmt.Errorf("failed to encode poster PNG: %w", err)
  }
  return buf, nil
}

func (ps *posterService) generateInitialsPlacard(name string) (bytes.Buffer, error) {
  dc := gg.NewContext(posterSize, posterSize)

  // Circular mask so the placard is round
  dc.DrawCircle(float64(posterSize)/2, float64(posterSize)/2, float64(posterSize)/2)
  dc.Clip()

  base := ps.bgColors[rand.Intn(len(ps.bgColors))]
  dc.SetColor(base)
  dc.DrawRectangle(0, 0, float64(posterSize), float64(posterSize))
  dc.Fill()

  initials := computeInitials(name)
  dc.SetFontFace(ps.fontFace)
  tw, th := dc.MeasureString(initials)
  cx, cy := float64(posterSize)/2, float64(posterSize)/2

  dc.SetColor(color.White)
  dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

  var buf bytes.Buffer
  if err := dc.EncodePNG(&buf); err != nil {
    return buf, fmt.Errorf("failed to encode PNG: %w", err)
  }
  return buf, nil
}

//----------------------------------------------------------------------------------------
// Helpers
//----------------------------------------------------------------------------------------
func computeInitials(name string) string {
  parts := strings.Fields(name)
  if len(parts) == 0 {
    return "?"
  }
  first := strings.ToUpper(parts[0][:1])
  if len(parts) == 1 {
    return first
  }
  last := strings.ToUpper(parts[len(parts)-1][:1])
  return first + last
}

func loadColorsFromFile(jsonPath string) ([]color.NRGBA, error) {
  data, err := os.ReadFile(jsonPath)
  if err != nil {
    return nil, fmt.Errorf("read file error: %w", err)
  }
  var colors []color.NRGBA
  if err := json.Unmarshal(data, &colors); err != nil {
    return nil, fmt.Errorf("json unmarshal error: %w", err)
  }
  if len(colors) == 0 {
    return nil, fmt.Errorf("no colors defined in %s", jsonPath)
  }
  return colors, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
  fontBytes, err := os.ReadFile(fontPath)
  if err != nil {
    return nil, fmt.Errorf("failed to read font file: %w", err)
  }
  parsedFont, err := truetype.Parse(fontBytes)
  if err != nil {
    return nil, fmt.Errorf("failed to parse TTF: %w", err)
  }
  face := truetype.NewFace(parsedFont, &truetype.Options{
    Size:    size,
    DPI:     72,
    Hinting: font.HintingNone,
  })
  return face, nil
}
