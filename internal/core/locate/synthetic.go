package locate

import (
	"fmt"
	"strconv"

	"emlak-scraper/internal/core/job"
)

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// MonthName returns the Turkish month name, or the number itself when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return strconv.Itoa(month)
	}
	return turkishMonths[month-1]
}

// Placeholder for a complex name on listings that are not in a complex.
const notInComplex = "Belirtilmemiş"

type seed struct {
	day int
	l   job.Listing
}

var seeds = []seed{
	{15, job.Listing{
		OwnerName: "Ali Özkan", ContactNumber: "0535 444 22 11", RoomCount: "3+1", NetArea: "110 m²",
		IsInComplex: "Evet", ComplexName: "Modern Yaşam Sitesi", HeatingType: "Kombi",
		ParkingType: "Kapalı", CreditSuitable: "Evet", Price: "750.000 TL",
	}},
	{22, job.Listing{
		OwnerName: "Zeynep Aksoy", ContactNumber: "0542 777 88 99", RoomCount: "2+1", NetArea: "85 m²",
		IsInComplex: "Hayır", ComplexName: notInComplex, HeatingType: "Doğalgaz",
		ParkingType: "Yok", CreditSuitable: "Evet", Price: "520.000 TL",
	}},
	{8, job.Listing{
		OwnerName: "Hasan Çelik", ContactNumber: "0533 999 11 22", RoomCount: "4+2", NetArea: "180 m²",
		IsInComplex: "Evet", ComplexName: "VIP Residence", HeatingType: "Merkezi Isıtma",
		ParkingType: "Kapalı", CreditSuitable: "Hayır", Price: "1.500.000 TL",
	}},
	{28, job.Listing{
		OwnerName: "Ayşe Erdoğan", ContactNumber: "0544 123 45 67", RoomCount: "1+1", NetArea: "60 m²",
		IsInComplex: "Hayır", ComplexName: notInComplex, HeatingType: "Klima",
		ParkingType: "Açık", CreditSuitable: "Evet", Price: "380.000 TL",
	}},
}

// Synthesize returns the fixed demonstration candidates dated within month/year.
// The output depends only on its arguments.
func Synthesize(month, year int) []Candidate {
	name := MonthName(month)
	out := make([]Candidate, 0, len(seeds))
	for _, s := range seeds {
		known := s.l
		known.ListingDate = fmt.Sprintf("%d %s %d", s.day, name, year)
		out = append(out, Candidate{
			Source:  SourceSynthetic,
			RawHTML: fmt.Sprintf("<html><body>İlan tarihi: %s<br>İlan sahibi: %s</body></html>", known.ListingDate, known.OwnerName),
			Known:   known,
		})
	}
	return out
}
