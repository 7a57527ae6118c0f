package events

import (
	"fmt"

	"github.com/metropolisapp/metropolis/internal/models"
)

// FallbackEvents returns the fixed, deterministic set of synthetic events
// substituted when real candidates are exhausted. The set is parameterized
// only by city and date so the pipeline can never dead-end on upstream
// data unavailability; itineraries built from it are marked as curated
// suggestions rather than live data.
func FallbackEvents(city, date string) []models.CandidateEvent {
	return []models.CandidateEvent{
		{
			Title:       "Local Art Gallery Opening",
			Date:        models.EventDate{StartDate: date, When: "10:00 AM - 2:00 PM"},
			Addresses:   []string{fmt.Sprintf("Downtown %s", city)},
			Description: "Explore works by local artists in this community gallery showcase.",
			TicketInfo:  []models.TicketInfo{{Price: "Free"}},
		},
		{
			Title:       "Farmers Market",
			Date:        models.EventDate{StartDate: date, When: "9:00 AM - 1:00 PM"},
			Addresses:   []string{fmt.Sprintf("City Center, %s", city)},
			Description: "Fresh local produce, artisan goods, and live music.",
			TicketInfo:  []models.TicketInfo{{Price: "Free"}},
		},
		{
			Title:       "Live Jazz Night",
			Date:        models.EventDate{StartDate: date, When: "7:00 PM - 10:00 PM"},
			Addresses:   []string{fmt.Sprintf("Jazz Club, %s", city)},
			Description: "Enjoy an evening of smooth jazz with local musicians.",
			TicketInfo:  []models.TicketInfo{{Price: "$15"}},
		},
		{
			Title:       "Food Truck Festival",
			Date:        models.EventDate{StartDate: date, When: "11:00 AM - 8:00 PM"},
			Addresses:   []string{fmt.Sprintf("Waterfront Park, %s", city)},
			Description: "Sample delicious cuisine from the city's best food trucks.",
			TicketInfo:  []models.TicketInfo{{Price: "Free entry"}},
		},
		{
			Title:       "Comedy Show",
			Date:        models.EventDate{StartDate: date, When: "8:00 PM - 10:00 PM"},
			Addresses:   []string{fmt.Sprintf("Laugh Factory, %s", city)},
			Description: "Stand-up comedy featuring rising stars and local favorites.",
			TicketInfo:  []models.TicketInfo{{Price: "$20"}},
		},
	}
}
