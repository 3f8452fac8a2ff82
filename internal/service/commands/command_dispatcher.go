package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/domain/models"
	"github.com/mamadbah2/smartstore/internal/service/inventory"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// keepCurrent in a /conditions argument leaves that reading unchanged.
const keepCurrent = "-"

// Inventory is the slice of the engine reachable from text commands.
type Inventory interface {
	CreateBin(binID string, maxCapacity int, temperature, humidity float64) error
	AddItemToBin(binID string, item models.Item) error
	RemoveItemFromBin(binID, name string) error
	TakeOutQuantity(binID, name string, qty int) (int, error)
	GetBinContents(binID string) ([]models.Item, error)
	GetBinStatus(binID string) (models.BinStatus, error)
	UpdateBinConditions(binID string, temperature, humidity *float64) error
	CheckBinSafety(binID string) (models.SafetyReport, error)
	GetSafetySummary() models.SafetySummary
	GetAllSafetyViolations() []models.SafetyViolation
	RecommendConditions(itemName string) models.Recommendation
	ListBins() []string
}

// Dispatcher executes parsed commands against the inventory.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	inventory Inventory
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(inv Inventory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory: inv,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command and returns the reply text for the sender.
func (s *Service) HandleCommand(_ context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandCreate:
		return s.create(cmd.Args)
	case models.CommandAdd:
		return s.add(cmd.Args)
	case models.CommandTake:
		return s.take(cmd.Args)
	case models.CommandRemove:
		if len(cmd.Args) != 2 {
			return "", fmt.Errorf("%w: usage /remove <bin> <name>", ErrInvalidArguments)
		}
		name := itemName(cmd.Args[1])
		if err := s.inventory.RemoveItemFromBin(cmd.Args[0], name); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %s from bin %s.", name, cmd.Args[0]), nil
	case models.CommandShow:
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: usage /show <bin>", ErrInvalidArguments)
		}
		return s.show(cmd.Args[0])
	case models.CommandStatus:
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: usage /status <bin>", ErrInvalidArguments)
		}
		status, err := s.inventory.GetBinStatus(cmd.Args[0])
		if err != nil {
			return "", err
		}
		return FormatStatus(status), nil
	case models.CommandConditions:
		return s.conditions(cmd.Args)
	case models.CommandRecommend:
		if len(cmd.Args) == 0 {
			return "", fmt.Errorf("%w: usage /recommend <name>", ErrInvalidArguments)
		}
		name := itemName(strings.Join(cmd.Args, " "))
		return FormatRecommendation(name, s.inventory.RecommendConditions(name)), nil
	case models.CommandSafety:
		return s.safety(cmd.Args)
	case models.CommandBins:
		bins := s.inventory.ListBins()
		if len(bins) == 0 {
			return "No bins yet. Create one with /create.", nil
		}
		return "Bins: " + strings.Join(bins, ", "), nil
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) create(args []string) (string, error) {
	if len(args) != 4 {
		return "", fmt.Errorf("%w: usage /create <bin> <max_capacity> <temperature> <humidity>", ErrInvalidArguments)
	}

	capacity, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("%w: max capacity %q is not a whole number", ErrInvalidArguments, args[1])
	}
	temp, humidity, err := parseReadings(args[2], args[3])
	if err != nil {
		return "", err
	}

	if err := s.inventory.CreateBin(args[0], capacity, temp, humidity); err != nil {
		return "", err
	}
	return fmt.Sprintf("Bin %s created: %d units at %.1f°C / %.1f%%.", args[0], capacity, temp, humidity), nil
}

func (s *Service) add(args []string) (string, error) {
	if len(args) != 6 {
		return "", fmt.Errorf("%w: usage /add <bin> <name> <quantity> <temperature> <humidity> <YYYY-MM-DD>", ErrInvalidArguments)
	}

	qty, err := strconv.Atoi(args[2])
	if err != nil {
		return "", fmt.Errorf("%w: quantity %q is not a whole number", ErrInvalidArguments, args[2])
	}
	temp, humidity, err := parseReadings(args[3], args[4])
	if err != nil {
		return "", err
	}

	item, err := models.NewItem(itemName(args[1]), qty, temp, humidity, args[5], s.now())
	if err != nil {
		return "", err
	}
	if err := s.inventory.AddItemToBin(args[0], item); err != nil {
		return "", err
	}

	status, err := s.inventory.GetBinStatus(args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %d %s to bin %s (expires %s). %s",
		item.Quantity, item.Name, args[0], item.ExpiryDate.Format(models.DateLayout), FormatStatus(status)), nil
}

func (s *Service) take(args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("%w: usage /take <bin> <name> <quantity>", ErrInvalidArguments)
	}

	qty, err := strconv.Atoi(args[2])
	if err != nil {
		return "", fmt.Errorf("%w: quantity %q is not a whole number", ErrInvalidArguments, args[2])
	}

	name := itemName(args[1])
	taken, err := s.inventory.TakeOutQuantity(args[0], name, qty)
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("Took %d %s from bin %s.", taken, name, args[0])
	if taken < qty {
		reply += fmt.Sprintf(" Only %d were left in the oldest lot.", taken)
	}
	return reply, nil
}

func (s *Service) show(binID string) (string, error) {
	items, err := s.inventory.GetBinContents(binID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return fmt.Sprintf("Bin %s is empty.", binID), nil
	}

	now := s.now()
	var b strings.Builder
	fmt.Fprintf(&b, "Bin %s (oldest first):", binID)
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s x%d, expires %s (%s)", i+1, item.Name, item.Quantity,
			item.ExpiryDate.Format(models.DateLayout), daysLeft(item.DaysUntilExpiry(now)))
	}
	return b.String(), nil
}

func (s *Service) conditions(args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("%w: usage /conditions <bin> <temperature|-> <humidity|->", ErrInvalidArguments)
	}

	temp, err := optionalReading(args[1])
	if err != nil {
		return "", err
	}
	humidity, err := optionalReading(args[2])
	if err != nil {
		return "", err
	}

	if err := s.inventory.UpdateBinConditions(args[0], temp, humidity); err != nil {
		return "", err
	}
	status, err := s.inventory.GetBinStatus(args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Bin %s now at %.1f°C / %.1f%%.", args[0], status.Temperature, status.Humidity), nil
}

func (s *Service) safety(args []string) (string, error) {
	if len(args) == 1 {
		report, err := s.inventory.CheckBinSafety(args[0])
		if err != nil {
			return "", err
		}
		verdict := "safe"
		if !report.Safe {
			verdict = "UNSAFE"
		}
		return fmt.Sprintf("Bin %s is %s: %.1f°C (%s), %.1f%% humidity (%s).", report.BinID, verdict,
			report.Temperature, okWord(report.TemperatureSafe), report.Humidity, okWord(report.HumiditySafe)), nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("%w: usage /safety [bin]", ErrInvalidArguments)
	}

	return FormatSafety(s.inventory.GetSafetySummary(), s.inventory.GetAllSafetyViolations()), nil
}

// DescribeError turns a command failure into a reply for the sender.
func DescribeError(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedCommand):
		return "Unknown command. Send /help to see what I can do."
	case errors.Is(err, ErrInvalidArguments):
		return "Invalid arguments: " + strings.TrimPrefix(err.Error(), ErrInvalidArguments.Error()+": ")
	case errors.Is(err, models.ErrInvalidDateFormat):
		return "Dates must be written YYYY-MM-DD."
	case errors.Is(err, inventory.ErrUnknownBin):
		return "That bin does not exist. Send /bins to list them."
	case errors.Is(err, inventory.ErrDuplicateBin):
		return "A bin with that name already exists."
	case errors.Is(err, inventory.ErrUnsafeEnvironment):
		return "Those conditions are outside the safe range; nothing was changed."
	case errors.Is(err, inventory.ErrCapacityExceeded):
		return "Not enough room in that bin; nothing was added."
	case errors.Is(err, inventory.ErrItemNotFound):
		return "No such item in that bin."
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return "Quantities must be greater than zero."
	default:
		return "Something went wrong, please try again."
	}
}

// HelpText lists the supported commands.
const HelpText = `Commands:
/create <bin> <max_capacity> <temp> <humidity>
/add <bin> <name> <qty> <temp> <humidity> <YYYY-MM-DD>
/take <bin> <name> <qty>
/remove <bin> <name>
/show <bin>
/status <bin>
/conditions <bin> <temp|-> <humidity|->
/recommend <name>
/safety [bin]
/bins
Use _ for spaces in names, e.g. Bell_Pepper.`

// FormatStatus renders a bin status on one line.
func FormatStatus(status models.BinStatus) string {
	line := fmt.Sprintf("Bin %s: %d/%d units used, %d free, %d lots.",
		status.BinID, status.CurrentCapacity, status.MaxCapacity, status.AvailableCapacity, status.ItemCount)
	if status.AtCapacity {
		line += " FULL."
	}
	return line
}

// FormatRecommendation renders a storage recommendation.
func FormatRecommendation(name string, rec models.Recommendation) string {
	basis := "default profile"
	switch {
	case rec.Exact:
		basis = "known profile"
	case len(rec.Basis) > 0:
		basis = "similar to " + strings.Join(rec.Basis, ", ")
	}
	return fmt.Sprintf("%s: store at %.1f°C, %.1f%% humidity, about %.1f days shelf life (%s).",
		name, rec.OptimalTemp, rec.OptimalHumidity, rec.ShelfLifeDays, basis)
}

// FormatSafety renders the fleet-wide safety summary and its violations.
func FormatSafety(summary models.SafetySummary, violations []models.SafetyViolation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d bins safe (%.0f%%).", summary.SafeBins, summary.TotalBins, summary.SafePercentage)
	for _, v := range violations {
		for _, breach := range v.Violations {
			fmt.Fprintf(&b, "\n- Bin %s: %s %.1f, %.1f over the %.1f limit", v.BinID, breach.Kind, breach.Value, breach.Excess, breach.Threshold)
		}
	}
	return b.String()
}

func parseReadings(rawTemp, rawHumidity string) (float64, float64, error) {
	temp, err := strconv.ParseFloat(rawTemp, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: temperature %q is not a number", ErrInvalidArguments, rawTemp)
	}
	humidity, err := strconv.ParseFloat(rawHumidity, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: humidity %q is not a number", ErrInvalidArguments, rawHumidity)
	}
	return temp, humidity, nil
}

func optionalReading(raw string) (*float64, error) {
	if raw == keepCurrent {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidArguments, raw)
	}
	return &v, nil
}

func itemName(raw string) string {
	return strings.ReplaceAll(raw, "_", " ")
}

func daysLeft(days int) string {
	switch {
	case days < 0:
		return "expired"
	case days == 0:
		return "expires today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func okWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "too high"
}
