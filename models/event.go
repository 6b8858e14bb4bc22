package models

import (
	"fmt"
	"strings"
	"time"
)

type SaleStatus string

const (
	SaleStatusNotOnSale SaleStatus = "NOT_ON_SALE"
	SaleStatusOnSale    SaleStatus = "ON_SALE"
	SaleStatusSoldOut   SaleStatus = "SOLD_OUT"
	SaleStatusEnded     SaleStatus = "ENDED"
)

func ParseSaleStatus(s string) (SaleStatus, error) {
	switch st := SaleStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case SaleStatusNotOnSale, SaleStatusOnSale, SaleStatusSoldOut, SaleStatusEnded:
		return st, nil
	}
	return "", fmt.Errorf("unknown sale status %q", s)
}

// DateLayout is the layout of Performance.PerformanceDate.
const DateLayout = "2006-01-02"

type Performance struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Volume           string     `json:"volume"`
	PerformanceDate  string     `json:"performance_date"`
	PerformanceTime  string     `json:"performance_time"`
	DoorsOpenTime    string     `json:"doors_open_time,omitempty"`
	VenueName        string     `json:"venue_name"`
	VenueAddress     string     `json:"venue_address,omitempty"`
	VenueAccess      string     `json:"venue_access,omitempty"`
	GeneralPrice     int        `json:"general_price"`
	ReservedPrice    int        `json:"reserved_price"`
	GeneralCapacity  int        `json:"general_capacity"`
	ReservedCapacity int        `json:"reserved_capacity"`
	GeneralSold      int        `json:"general_sold"`
	ReservedSold     int        `json:"reserved_sold"`
	SaleStatus       SaleStatus `json:"sale_status"`
	SaleStartAt      *time.Time `json:"sale_start_at,omitempty"`
	SaleEndAt        *time.Time `json:"sale_end_at,omitempty"`
	FlyerImageURL    string     `json:"flyer_image_url,omitempty"`
	Description      string     `json:"description,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (p *Performance) GeneralRemaining() int {
	return max(p.GeneralCapacity-p.GeneralSold, 0)
}

func (p *Performance) ReservedRemaining() int {
	return max(p.ReservedCapacity-p.ReservedSold, 0)
}

func (p *Performance) IsOnSale(now time.Time) bool {
	if p.SaleStatus != SaleStatusOnSale {
		return false
	}
	if p.SaleStartAt != nil && now.Before(*p.SaleStartAt) {
		return false
	}
	if p.SaleEndAt != nil && now.After(*p.SaleEndAt) {
		return false
	}
	return true
}

func (p *Performance) IsSoldOut() bool {
	return p.SaleStatus == SaleStatusSoldOut ||
		(p.GeneralRemaining() == 0 && p.ReservedRemaining() == 0)
}

func (p *Performance) Validate() error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("title is required")
	case strings.TrimSpace(p.VenueName) == "":
		return fmt.Errorf("venue_name is required")
	case strings.TrimSpace(p.PerformanceTime) == "":
		return fmt.Errorf("performance_time is required")
	case p.GeneralPrice < 0 || p.ReservedPrice < 0:
		return fmt.Errorf("prices must not be negative")
	case p.GeneralCapacity < 0 || p.ReservedCapacity < 0:
		return fmt.Errorf("capacities must not be negative")
	}
	if _, err := time.Parse(DateLayout, p.PerformanceDate); err != nil {
		return fmt.Errorf("performance_date must be YYYY-MM-DD")
	}
	if p.SaleStatus == "" {
		p.SaleStatus = SaleStatusNotOnSale
	}
	if _, err := ParseSaleStatus(string(p.SaleStatus)); err != nil {
		return err
	}
	return nil
}

type Availability struct {
	PerformanceID     string `json:"performance_id"`
	GeneralRemaining  int    `json:"general_remaining"`
	ReservedRemaining int    `json:"reserved_remaining"`
	IsOnSale          bool   `json:"is_on_sale"`
	IsSoldOut         bool   `json:"is_sold_out"`
}

type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
}

func (n *News) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if n.PublishedAt.IsZero() {
		return fmt.Errorf("published_at is required")
	}
	return nil
}

type AdminUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
