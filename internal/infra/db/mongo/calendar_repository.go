package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/shared/daterange"
	"venuecal/internal/domain/shared/money"
)

// CalendarRepository stores one document per venue. Days are kept as
// YYYY-MM-DD strings and re-read in the service time zone so a booking never
// shifts by a day between processes in different zones.
type CalendarRepository struct {
	col *mongo.Collection
	loc *time.Location
}

func NewCalendarRepository(db *mongo.Database, loc *time.Location) *CalendarRepository {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarRepository{col: db.Collection("venuecal_calendars"), loc: loc}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id availability.VenueID) (*availability.VenueCalendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availability.ErrCalendarNotFound
		}
		return nil, err
	}
	return doc.toAggregate(r.loc)
}

// Save writes the calendar if the stored version still matches, then bumps it.
func (r *CalendarRepository) Save(ctx context.Context, cal *availability.VenueCalendar) error {
	doc := newCalendarDocument(cal)
	filter := bson.M{"_id": doc.ID, "version": cal.Version}
	doc.Version = cal.Version + 1
	doc.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return availability.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return availability.ErrVersionConflict
	}
	cal.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID         string            `bson:"_id"`
	Bookings   []bookingDocument `bson:"bookings"`
	Highlights []rangeDocument   `bson:"highlights"`
	Settings   settingsDocument  `bson:"settings"`
	Version    int64             `bson:"version"`
	UpdatedAt  time.Time         `bson:"updated_at"`
}

type bookingDocument struct {
	ID       string `bson:"id"`
	DateFrom string `bson:"date_from"`
	DateTo   string `bson:"date_to"`
}

type rangeDocument struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type settingsDocument struct {
	MinNights         int    `bson:"min_nights"`
	AllowPast         bool   `bson:"allow_past"`
	NightlyPriceCents int64  `bson:"nightly_price_cents"`
	Currency          string `bson:"currency"`
	ClosedWeekdays    []int  `bson:"closed_weekdays"`
}

func newCalendarDocument(cal *availability.VenueCalendar) calendarDocument {
	doc := calendarDocument{
		ID:         string(cal.VenueID),
		Bookings:   make([]bookingDocument, 0, len(cal.Bookings)),
		Highlights: make([]rangeDocument, 0, len(cal.Highlights)),
		Settings: settingsDocument{
			MinNights:         cal.Settings.MinNights,
			AllowPast:         cal.Settings.AllowPast,
			NightlyPriceCents: cal.Settings.NightlyPrice.Amount,
			Currency:          cal.Settings.NightlyPrice.Currency,
		},
		Version: cal.Version,
	}
	for _, b := range cal.Bookings {
		doc.Bookings = append(doc.Bookings, bookingDocument{
			ID:       string(b.ID),
			DateFrom: b.DateFrom.Format(daterange.DateLayout),
			DateTo:   b.DateTo.Format(daterange.DateLayout),
		})
	}
	for _, h := range cal.Highlights {
		doc.Highlights = append(doc.Highlights, rangeDocument{
			Start: h.Start.Format(daterange.DateLayout),
			End:   h.End.Format(daterange.DateLayout),
		})
	}
	for _, wd := range cal.Settings.ClosedWeekdays {
		doc.Settings.ClosedWeekdays = append(doc.Settings.ClosedWeekdays, int(wd))
	}
	return doc
}

func (d calendarDocument) toAggregate(loc *time.Location) (*availability.VenueCalendar, error) {
	price, err := money.New(d.Settings.NightlyPriceCents, d.Settings.Currency)
	if err != nil {
		return nil, fmt.Errorf("calendar %s: %w", d.ID, err)
	}
	cal := &availability.VenueCalendar{
		VenueID: availability.VenueID(d.ID),
		Settings: availability.Settings{
			MinNights:    d.Settings.MinNights,
			AllowPast:    d.Settings.AllowPast,
			NightlyPrice: price,
		},
		Version: d.Version,
	}
	for _, wd := range d.Settings.ClosedWeekdays {
		cal.Settings.ClosedWeekdays = append(cal.Settings.ClosedWeekdays, time.Weekday(wd))
	}
	for _, b := range d.Bookings {
		booking, err := availability.ParseBooking(b.ID, b.DateFrom, b.DateTo, loc)
		if err != nil {
			return nil, fmt.Errorf("calendar %s booking %s: %w", d.ID, b.ID, err)
		}
		cal.Bookings = append(cal.Bookings, booking)
	}
	for _, h := range d.Highlights {
		start, err := daterange.ParseInstant(h.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("calendar %s highlight: %w", d.ID, err)
		}
		end, err := daterange.ParseInstant(h.End, loc)
		if err != nil {
			return nil, fmt.Errorf("calendar %s highlight: %w", d.ID, err)
		}
		cal.Highlights = append(cal.Highlights, availability.BlockedRange{Start: start, End: end})
	}
	return cal, nil
}

var _ availability.Repository = (*CalendarRepository)(nil)
