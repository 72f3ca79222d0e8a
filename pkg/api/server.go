// Package api provides the REST API server for tune2dp
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/tune2dp/pkg/converter"
	"github.com/james-see/tune2dp/pkg/converter/devices"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title tune2dp API
// @version 1.0
// @description API for converting tunes into Doom PC speaker sound effects
// @host localhost:8080
// @BasePath /api/v1

// maxUploadSize bounds uploaded files; a full lump is under 64 KiB
const maxUploadSize = 8 << 20

var errUploadTooLarge = fmt.Errorf("file exceeds the %d byte upload limit", maxUploadSize)

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the API routes
func NewRouter() *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = maxUploadSize

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/tune2dp", handleTuneToDP)
		v1.POST("/convert/tune2midi", handleTuneToMIDI)
		v1.POST("/convert/tune2wav", handleTuneToWAV)
		v1.POST("/convert/dp2midi", handleDPToMIDI)
		v1.POST("/convert/dp2wav", handleDPToWAV)
		v1.POST("/convert/midi2dp", handleMIDIToDP)
		v1.GET("/formats", listFormats)
		v1.GET("/devices", listDevices)
		v1.GET("/notes", listNotes)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tune2dp",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"tune", "dp", "midi", "wav"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listDevices godoc
// @Summary List supported devices
// @Description Returns a list of supported sound drivers
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]map[string]string
// @Router /api/v1/devices [get]
func listDevices(c *gin.Context) {
	dev := devices.NewPCSpeaker()
	c.JSON(http.StatusOK, gin.H{
		"devices": []map[string]string{
			{"id": dev.ID(), "name": dev.Name(), "extension": dev.Extension()},
		},
	})
}

// listNotes godoc
// @Summary List note tokens
// @Description Returns the base pitch of every note token
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/notes [get]
func listNotes(c *gin.Context) {
	tokens := make([]string, 0, len(converter.BasePitches))
	for token := range converter.BasePitches {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	notes := make([]gin.H, 0, len(tokens))
	for _, token := range tokens {
		notes = append(notes, gin.H{"token": token, "pitch": converter.BasePitches[token]})
	}

	c.JSON(http.StatusOK, gin.H{
		"notes":      notes,
		"rest":       "r",
		"octaveStep": converter.OctaveStep,
		"tickRate":   converter.TickRate,
	})
}

// handleTuneToDP godoc
// @Summary Convert tune to DP lump
// @Description Upload a tune text file and receive a PC speaker lump
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "Tune file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert/tune2dp [post]
func handleTuneToDP(c *gin.Context) {
	handleConversion(c, converter.FormatTune, converter.FormatDP)
}

// handleTuneToMIDI godoc
// @Summary Convert tune to MIDI
// @Description Upload a tune text file and receive a MIDI preview
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "Tune file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert/tune2midi [post]
func handleTuneToMIDI(c *gin.Context) {
	handleConversion(c, converter.FormatTune, converter.FormatMIDI)
}

// handleTuneToWAV godoc
// @Summary Convert tune to WAV
// @Description Upload a tune text file and receive a square wave rendering
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/wav
// @Param file formData file true "Tune file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert/tune2wav [post]
func handleTuneToWAV(c *gin.Context) {
	handleConversion(c, converter.FormatTune, converter.FormatWAV)
}

// handleDPToMIDI godoc
// @Summary Convert DP lump to MIDI
// @Description Upload a PC speaker lump and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "Lump to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert/dp2midi [post]
func handleDPToMIDI(c *gin.Context) {
	handleConversion(c, converter.FormatDP, converter.FormatMIDI)
}

// handleDPToWAV godoc
// @Summary Convert DP lump to WAV
// @Description Upload a PC speaker lump and receive a square wave rendering
// @Tags convert
// @Accept multipart/form-data
// @Produce audio/wav
// @Param file formData file true "Lump to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert/dp2wav [post]
func handleDPToWAV(c *gin.Context) {
	handleConversion(c, converter.FormatDP, converter.FormatWAV)
}

// handleMIDIToDP godoc
// @Summary Convert MIDI to DP lump
// @Description Upload a MIDI file and receive a PC speaker lump
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/convert/midi2dp [post]
func handleMIDIToDP(c *gin.Context) {
	handleConversion(c, converter.FormatMIDI, converter.FormatDP)
}

func handleConversion(c *gin.Context, fromFormat, toFormat converter.Format) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errUploadTooLarge.Error()})
		return
	}

	// Read file content; one byte past the limit detects oversized parts
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errUploadTooLarge.Error()})
		return
	}

	conv := converter.New(devices.NewPCSpeaker())

	result, err := conv.Convert(data, fromFormat, toFormat)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	// Generate output filename
	base := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if base == "" || base == "." {
		base = "converted"
	}
	outputName := base + toFormat.Extension()

	var contentType string
	switch toFormat {
	case converter.FormatMIDI:
		contentType = "audio/midi"
	case converter.FormatWAV:
		contentType = "audio/wav"
	default:
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}

// statusFor maps input errors to 400 and everything else to 500
func statusFor(err error) int {
	var segErr *converter.SegmentError
	switch {
	case errors.As(err, &segErr),
		errors.Is(err, converter.ErrLumpTooShort),
		errors.Is(err, converter.ErrBadLumpHeader),
		errors.Is(err, converter.ErrLumpTruncated),
		errors.Is(err, converter.ErrInvalidMIDI):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
