// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package exercise

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// LanguageEnglish is the wger language id used for all queries.
const LanguageEnglish = 2

// Exercise is a single wger exercise. Description is HTML.
type Exercise struct {
	ID               int     `json:"id" yaml:"id"`
	UUID             string  `json:"uuid" yaml:"uuid"`
	Name             string  `json:"name" yaml:"name"`
	Description      string  `json:"description" yaml:"description"`
	Category         int     `json:"category" yaml:"category"`
	Muscles          []int   `json:"muscles" yaml:"muscles"`
	MusclesSecondary []int   `json:"muscles_secondary" yaml:"muscles_secondary"`
	Equipment        []int   `json:"equipment" yaml:"equipment"`
	Language         int     `json:"language" yaml:"language"`
	Images           []Image `json:"images" yaml:"images"`
	Variations       []int   `json:"variations" yaml:"variations"`
	CreationDate     string  `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	UpdateDate       string  `json:"update_date,omitempty" yaml:"update_date,omitempty"`
}

// Image is an illustration attached to an exercise.
type Image struct {
	ID            int    `json:"id" yaml:"id"`
	Image         string `json:"image" yaml:"image"`
	IsMain        bool   `json:"is_main" yaml:"is_main"`
	Exercise      int    `json:"exercise" yaml:"exercise"`
	License       int    `json:"license,omitempty" yaml:"license,omitempty"`
	LicenseAuthor string `json:"license_author,omitempty" yaml:"license_author,omitempty"`
}

type Category struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Muscle struct {
	ID                int    `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	IsFront           bool   `json:"is_front" yaml:"is_front"`
	ImageURLMain      string `json:"image_url_main" yaml:"image_url_main"`
	ImageURLSecondary string `json:"image_url_secondary" yaml:"image_url_secondary"`
}

type Equipment struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Page is the envelope wger wraps around every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasImages reports whether the exercise carries at least one image.
func (e Exercise) HasImages() bool {
	return len(e.Images) > 0
}

// MainImage returns the URL of the image flagged as main, falling back to
// the first image. Empty when there are no images.
func (e Exercise) MainImage() string {
	if !e.HasImages() {
		return ""
	}
	for _, img := range e.Images {
		if img.IsMain && img.Image != "" {
			return img.Image
		}
	}
	return e.Images[0].Image
}

// DisplayName is the name to show a human. wger returns blank names for some
// exercises, so those are labeled by id.
func (e Exercise) DisplayName() string {
	if n := strings.TrimSpace(e.Name); n != "" {
		return n
	}
	return fmt.Sprintf("Exercise #%d", e.ID)
}

// PlainDescription returns the description with all markup removed.
func (e Exercise) PlainDescription() string {
	return StripHTML(e.Description)
}

// InCategory, HasMuscle and HasEquipment treat id 0 as "any".

func (e Exercise) InCategory(id int) bool {
	return id == 0 || e.Category == id
}

func (e Exercise) HasMuscle(id int) bool {
	return id == 0 || contains(e.Muscles, id)
}

func (e Exercise) HasEquipment(id int) bool {
	return id == 0 || contains(e.Equipment, id)
}

var stripPolicy = bluemonday.StrictPolicy()

// StripHTML removes every tag from s, unescapes entities and trims the
// result.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
