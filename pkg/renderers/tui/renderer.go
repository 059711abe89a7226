package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/session"
	"github.com/goliatone/go-inspectform/pkg/submission"
)

// Renderer walks an inspection session in the terminal, one section at a
// time. Values go through the session, so coercion, alerts and timers behave
// exactly as they do for any other front end.
type Renderer struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
	logger *slog.Logger
	open   FileOpener
}

// New constructs a TUI renderer with defaults (survey driver on stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		out:    os.Stdout,
		theme:  DefaultTheme,
		logger: slog.Default(),
		open:   openFile,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r, nil
}

type navAction int

const (
	navNext navAction = iota
	navPrevious
	navSubmit
	navCancel
)

var navLabels = map[navAction]string{
	navNext:     "Section suivante",
	navPrevious: "Section précédente",
	navSubmit:   "Terminer et soumettre",
	navCancel:   "Annuler l'inspection",
}

// Fill prompts every section starting from the current one until the
// inspector chooses to submit from the last section. It returns ErrCancelled
// when the inspector abandons the inspection and ErrAborted on Ctrl+C.
func (r *Renderer) Fill(ctx context.Context, s *session.Session) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if s == nil {
		return errors.New("tui: session is nil")
	}
	total := len(s.Form().Sections)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		section, idx := s.Current()
		if err := r.info(ctx, fmt.Sprintf("== %s (%d/%d) ==", section.Title, idx+1, total)); err != nil {
			return err
		}
		if err := r.fillSection(ctx, s, section); err != nil {
			return err
		}
		if err := r.showAlerts(ctx, s, section.ID); err != nil {
			return err
		}

		action, err := r.navigate(ctx, s, idx)
		if err != nil {
			return err
		}
		switch action {
		case navNext:
			s.Next()
		case navPrevious:
			s.Previous()
		case navCancel:
			return ErrCancelled
		case navSubmit:
			return r.promptNotes(ctx, s)
		}
	}
}

// Run fills the session and submits it. Missing mandatory items send the
// inspector back to the first incomplete section; retryable persistence
// failures offer another attempt with the same answers.
func (r *Renderer) Run(ctx context.Context, s *session.Session) (submission.Receipt, error) {
	for {
		if err := r.Fill(ctx, s); err != nil {
			return submission.Receipt{}, err
		}
		receipt, refill, err := r.submit(ctx, s)
		if refill {
			continue
		}
		return receipt, err
	}
}

func (r *Renderer) submit(ctx context.Context, s *session.Session) (submission.Receipt, bool, error) {
	for {
		receipt, err := s.Submit(ctx)
		if err == nil {
			return receipt, false, r.info(ctx, fmt.Sprintf("Inspection envoyée (%s)", receipt.ID))
		}

		var missing *submission.ValidationError
		if errors.As(err, &missing) {
			for _, item := range missing.Missing {
				if ierr := r.errorf(ctx, "Champ obligatoire: %s / %s", item.SectionTitle, item.ItemName); ierr != nil {
					return submission.Receipt{}, false, ierr
				}
			}
			if len(missing.Missing) > 0 {
				if idx := s.Form().SectionIndex(missing.Missing[0].SectionID); idx >= 0 {
					if gerr := s.GoTo(idx); gerr != nil {
						return submission.Receipt{}, false, gerr
					}
				}
			}
			return submission.Receipt{}, true, nil
		}

		if !submission.IsRetryable(err) {
			return submission.Receipt{}, false, err
		}
		r.logger.Warn("submission failed", "session", s.ID(), "err", err)
		retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Échec de l'envoi (%v). Réessayer ?", err),
			Default: true,
		})
		if cerr != nil {
			return submission.Receipt{}, false, cerr
		}
		if !retry {
			return submission.Receipt{}, false, err
		}
	}
}

func (r *Renderer) navigate(ctx context.Context, s *session.Session, idx int) (navAction, error) {
	var actions []navAction
	last := s.IsLast()
	if !last {
		actions = append(actions, navNext)
	}
	if idx > 0 {
		actions = append(actions, navPrevious)
	}
	if last {
		actions = append(actions, navSubmit)
	}
	actions = append(actions, navCancel)

	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = navLabels[a]
	}
	choice, err := r.driver.Select(ctx, SelectConfig{Message: "Suite", Options: labels})
	if err != nil {
		return navCancel, err
	}
	if choice < 0 || choice >= len(actions) {
		return navCancel, fmt.Errorf("tui: invalid navigation choice %d", choice)
	}
	return actions[choice], nil
}

func (r *Renderer) promptNotes(ctx context.Context, s *session.Session) error {
	notes, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: "Notes générales",
		Default: s.Preview().GeneralNotes,
	})
	if err != nil {
		return err
	}
	s.SetGeneralNotes(notes)
	return nil
}

func (r *Renderer) fillSection(ctx context.Context, s *session.Session, section form.Section) error {
	if section.Kind == form.SectionScalar {
		return r.promptItem(ctx, s, section.ID, "", section.LegacyItem())
	}
	for _, item := range section.Items {
		if err := r.promptItem(ctx, s, section.ID, item.ID, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptItem(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	switch item.Type {
	case form.ItemTypeSingleChoice, form.ItemTypeList:
		if len(item.EffectiveOptions()) > 0 {
			return r.promptChoice(ctx, s, sectionID, itemID, item)
		}
		return r.promptText(ctx, s, sectionID, itemID, item)
	case form.ItemTypeMultiChoice:
		return r.promptMulti(ctx, s, sectionID, itemID, item)
	case form.ItemTypeFreeText:
		return r.promptTextArea(ctx, s, sectionID, itemID, item)
	case form.ItemTypeStopwatch, form.ItemTypeCountdown:
		return r.promptTimer(ctx, s, sectionID, itemID, item)
	case form.ItemTypeGeolocation:
		return r.promptCapture(ctx, item, "Capturer la position", func() error {
			return s.CaptureLocation(ctx, sectionID, itemID)
		})
	case form.ItemTypeWeather:
		return r.promptCapture(ctx, item, "Relever la météo", func() error {
			return s.CaptureWeather(ctx, sectionID, itemID)
		})
	case form.ItemTypePhoto:
		return r.promptPhoto(ctx, s, sectionID, itemID, item)
	case form.ItemTypeSignature:
		return r.info(ctx, fmt.Sprintf("%s: signature non disponible dans le terminal", item.Name))
	default:
		return r.promptText(ctx, s, sectionID, itemID, item)
	}
}

func (r *Renderer) promptChoice(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	options := item.EffectiveOptions()
	current, _ := s.Value(sectionID, itemID)
	def := -1
	if cur, ok := current.(string); ok {
		def = indexOf(options, cur)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label(item),
		Options:      options,
		DefaultIndex: def,
		PageSize:     len(options),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("tui: invalid choice %d for %q", idx, item.Name)
	}
	return s.Update(sectionID, itemID, options[idx])
}

func (r *Renderer) promptMulti(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	options := item.EffectiveOptions()
	current, _ := s.Value(sectionID, itemID)
	selected, _ := current.([]string)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  label(item),
		Options:  options,
		Defaults: indicesOf(options, selected),
		PageSize: len(options),
	})
	if err != nil {
		return err
	}
	return s.Update(sectionID, itemID, defaultsFromIndices(options, indices))
}

// promptText re-asks until the session accepts the answer.
func (r *Renderer) promptText(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	current, _ := s.Value(sectionID, itemID)
	def := stringify(current)
	for {
		raw, err := r.driver.Input(ctx, InputConfig{
			Message: label(item),
			Default: def,
			Help:    help(item),
		})
		if err != nil {
			return err
		}
		err = s.Update(sectionID, itemID, strings.TrimSpace(raw))
		if err == nil || errors.Is(err, session.ErrClosed) {
			return err
		}
		if ierr := r.errorf(ctx, "%v", err); ierr != nil {
			return ierr
		}
		def = raw
	}
}

func (r *Renderer) promptTextArea(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	current, _ := s.Value(sectionID, itemID)
	raw, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: label(item),
		Default: stringify(current),
		Help:    help(item),
	})
	if err != nil {
		return err
	}
	return s.Update(sectionID, itemID, raw)
}

const (
	timerStart = iota
	timerEnter
	timerSkip
)

func (r *Renderer) promptTimer(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	status, err := s.TimerStatus(sectionID, itemID)
	if err != nil {
		return err
	}
	choice, err := r.driver.Select(ctx, SelectConfig{
		Message: fmt.Sprintf("%s (%s s)", label(item), formatNumber(status.Value)),
		Options: []string{"Démarrer", "Saisir la valeur", "Passer"},
	})
	if err != nil {
		return err
	}

	switch choice {
	case timerStart:
		if err := s.StartTimer(sectionID, itemID); err != nil {
			return err
		}
		_, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Arrêter", Default: true})
		if err := s.PauseTimer(sectionID, itemID); err != nil {
			return err
		}
		if cerr != nil {
			return cerr
		}
		status, err = s.TimerStatus(sectionID, itemID)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s: %s s", item.Name, formatNumber(status.Value))
		if status.OverThreshold {
			msg += " (seuil dépassé)"
		}
		return r.info(ctx, msg)
	case timerEnter:
		return r.promptText(ctx, s, sectionID, itemID, item)
	}
	return nil
}

// promptCapture reports device failures and moves on; the failure stays
// attached to the item in the session.
func (r *Renderer) promptCapture(ctx context.Context, item form.Item, message string, capture func() error) error {
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("%s (%s)", message, item.Name), Default: true})
	if err != nil || !ok {
		return err
	}
	if err := capture(); err != nil {
		var derr *session.DeviceCaptureError
		if !errors.As(err, &derr) {
			return err
		}
		return r.errorf(ctx, "%s: %v", item.Name, derr.Err)
	}
	return nil
}

func (r *Renderer) promptPhoto(ctx context.Context, s *session.Session, sectionID, itemID string, item form.Item) error {
	path, err := r.driver.Input(ctx, InputConfig{
		Message: label(item),
		Help:    "Chemin du fichier image, vide pour passer",
	})
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	f, err := r.open(path)
	if err != nil {
		return r.errorf(ctx, "%s: %v", item.Name, err)
	}
	defer f.Close()

	if err := s.AttachPhoto(ctx, sectionID, itemID, filepath.Base(path), f); err != nil {
		var derr *session.DeviceCaptureError
		if !errors.As(err, &derr) {
			return err
		}
		return r.errorf(ctx, "%s: %v", item.Name, derr.Err)
	}
	return nil
}

func (r *Renderer) showAlerts(ctx context.Context, s *session.Session, sectionID string) error {
	for _, alert := range s.Alerts() {
		if alert.SectionID != sectionID {
			continue
		}
		if err := r.info(ctx, r.theme.AlertPrefix+alert.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func label(item form.Item) string {
	name := item.Name
	if name == "" {
		name = item.ID
	}
	if item.Mandatory {
		name += " *"
	}
	return name
}

func help(item form.Item) string {
	switch item.Type {
	case form.ItemTypeNumber:
		var parts []string
		if item.Config.Min != nil {
			parts = append(parts, "min "+formatNumber(*item.Config.Min))
		}
		if item.Config.Max != nil {
			parts = append(parts, "max "+formatNumber(*item.Config.Max))
		}
		if item.Config.Unit != "" {
			parts = append(parts, item.Config.Unit)
		}
		return strings.Join(parts, ", ")
	case form.ItemTypeDate:
		return "AAAA-MM-JJ"
	case form.ItemTypeRating:
		return "1 à 5"
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
