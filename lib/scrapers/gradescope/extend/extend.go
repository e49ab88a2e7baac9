// Package extend applies per-student deadline extensions. The extensions
// management page embeds everything the mutation needs (roster emails,
// current due dates, the course's authoritative timezone) as react props;
// the override itself is a JSON post guarded by the meta-tag CSRF token
// channel.
package extend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gradescope-api/lib/chrono"
	"gradescope-api/lib/htmlutil"
	"gradescope-api/lib/scrapers/gradescope/core"
	"gradescope-api/lib/scrapers/gradescope/view"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope/extend")

var ErrStudentNotFound = errors.New("student email not found in extensions roster")

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

// pageProps is the JSON blob rendered onto the AddExtension mount point.
// Student ids stay json.Number so they round-trip into the payload exactly
// as the server rendered them.
type pageProps struct {
	Students []struct {
		Id    json.Number `json:"id"`
		Email string      `json:"email"`
		Name  string      `json:"name"`
	} `json:"students"`
	Assignment struct {
		// naive local timestamps in the course's timezone
		DueDate     string  `json:"due_date"`
		HardDueDate *string `json:"hard_due_date"`
	} `json:"assignment"`
	Timezone struct {
		Identifier string `json:"identifier"`
	} `json:"timezone"`
}

type absoluteDate struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type overrideSettings struct {
	DueDate     absoluteDate  `json:"due_date"`
	HardDueDate *absoluteDate `json:"hard_due_date,omitempty"`
}

type override struct {
	UserId   json.Number      `json:"user_id"`
	Settings overrideSettings `json:"settings"`
}

type extensionPayload struct {
	Override override `json:"override"`
}

func (c Client) fetchProps(ctx context.Context, assignment view.Assignment) (pageProps, error) {
	var props pageProps

	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(assignment.Path() + "/extensions")
	if err != nil {
		return props, err
	}
	if err := core.CheckResponse(res, "could not load assignment"); err != nil {
		return props, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return props, err
	}

	mount := doc.Find(`li[data-react-class="AddExtension"]`).First()
	if len(mount.Nodes) == 0 {
		return props, fmt.Errorf("assignment %s: extensions data not found", assignment.Id)
	}
	err = htmlutil.DecodeAttrJSON(mount, "data-react-props", &props)
	if err != nil {
		return props, err
	}
	return props, nil
}

// Roster returns the email to user-id mapping of the extensions page
// snapshot. Exposed so callers can diagnose a failed email lookup.
func (c Client) Roster(ctx context.Context, assignment view.Assignment) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "client:Roster")
	defer span.End()

	props, err := c.fetchProps(ctx, assignment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch extensions page")
		return nil, err
	}

	emails := make(map[string]string, len(props.Students))
	for _, s := range props.Students {
		emails[s.Email] = s.Id.String()
	}
	return emails, nil
}

func (c Client) postOverride(ctx context.Context, assignment view.Assignment, payload extensionPayload) error {
	endpoint := assignment.Path() + "/extensions"

	token, err := c.Core.Token(ctx, endpoint, core.MetaTag("csrf-token"))
	if err != nil {
		return err
	}

	res, err := c.Core.SubmitForm(ctx, core.Form{
		Url:         endpoint,
		HeaderToken: token,
		Json:        payload,
	})
	if err != nil {
		return err
	}
	return core.CheckResponse(res, "creating an extension failed")
}

// Apply extends the assignment's deadlines for one student by the given
// day/hour offset. The arithmetic happens in the course's authoritative
// timezone, not the machine-local one: a deadline shifted across a DST
// transition keeps its local wall-clock reading. The hard due date is
// shifted identically, and only if the assignment already has one. Any
// non-2xx fetch or post aborts the whole operation with nothing mutated.
func (c Client) Apply(ctx context.Context, assignment view.Assignment, email string, days int, hours int) error {
	ctx, span := tracer.Start(ctx, "client:Apply")
	defer span.End()

	props, err := c.fetchProps(ctx, assignment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch extensions page")
		return err
	}

	var userId json.Number
	for _, s := range props.Students {
		if s.Email == email {
			userId = s.Id
			break
		}
	}
	if userId == "" {
		span.SetStatus(codes.Error, ErrStudentNotFound.Error())
		return fmt.Errorf("%w: %s", ErrStudentNotFound, email)
	}

	loc, err := time.LoadLocation(props.Timezone.Identifier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown course timezone")
		return fmt.Errorf("course timezone %q: %w", props.Timezone.Identifier, err)
	}

	due, err := chrono.ParseNaive(props.Assignment.DueDate, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse due date")
		return err
	}

	settings := overrideSettings{
		DueDate: absoluteDate{
			Type:  "absolute",
			Value: chrono.FormatWire(chrono.Shift(due, days, hours)),
		},
	}

	if props.Assignment.HardDueDate != nil && *props.Assignment.HardDueDate != "" {
		hardDue, err := chrono.ParseNaive(*props.Assignment.HardDueDate, loc)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse hard due date")
			return err
		}
		settings.HardDueDate = &absoluteDate{
			Type:  "absolute",
			Value: chrono.FormatWire(chrono.Shift(hardDue, days, hours)),
		}
	}

	err = c.postOverride(ctx, assignment, extensionPayload{
		Override: override{UserId: userId, Settings: settings},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post extension")
		return err
	}
	return nil
}

// Create is the legacy direct path: it takes already-absolute instants and
// skips the extensions-page arithmetic. When hardDueDate is nil it is set
// equal to dueDate.
// TODO: the fallback should be the later of the assignment's current hard
// due date and dueDate; kept as-is pending a decision upstream.
func (c Client) Create(ctx context.Context, assignment view.Assignment, userId string, dueDate time.Time, hardDueDate *time.Time) error {
	ctx, span := tracer.Start(ctx, "client:Create")
	defer span.End()

	if hardDueDate != nil && hardDueDate.Before(dueDate) {
		err := fmt.Errorf("hard due date %s is before due date %s",
			chrono.FormatWire(*hardDueDate), chrono.FormatWire(dueDate))
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	hard := dueDate
	if hardDueDate != nil {
		hard = *hardDueDate
	}

	err := c.postOverride(ctx, assignment, extensionPayload{
		Override: override{
			UserId: json.Number(userId),
			Settings: overrideSettings{
				DueDate: absoluteDate{
					Type:  "absolute",
					Value: chrono.FormatWire(dueDate),
				},
				HardDueDate: &absoluteDate{
					Type:  "absolute",
					Value: chrono.FormatWire(hard),
				},
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post extension")
		return err
	}
	return nil
}
