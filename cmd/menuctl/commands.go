package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-menu-client/admin"
	"github.com/jrsteele09/go-menu-client/auth"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
	"github.com/jrsteele09/go-menu-client/restaurants"
)

var errUsage = errors.New("invalid usage")

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// action splits "list -restaurant r1" into the action and its flags. list is the default.
func action(args []string) (string, []string) {
	if len(args) == 0 || (len(args[0]) > 0 && args[0][0] == '-') {
		return "list", args
	}
	return args[0], args[1:]
}

func unknownAction(cmd, act string) error {
	return fmt.Errorf("%w: %s has no action %q", errUsage, cmd, act)
}

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("login")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password, omit for first time login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := c.auth.Login(ctx, *phone, *password)
	if err != nil {
		return err
	}
	c.router.Navigate(ctx, result.NextRoute())
	if result.RequiresPasswordSetup {
		return c.print(map[string]any{"requiresPasswordSetup": true, "next": result.NextRoute()})
	}
	return c.print(map[string]any{"user": result.User, "next": result.NextRoute()})
}

func cmdSetPassword(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("set-password")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := c.auth.SetPassword(ctx, *password, *confirm)
	if err != nil {
		return err
	}
	c.router.Navigate(ctx, resp.NextRoute())
	return c.print(map[string]any{"user": resp.User, "next": resp.NextRoute()})
}

func cmdRegister(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("register")
	var req auth.RegisterRequest
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.FirstName, "first", "", "first name")
	fs.StringVar(&req.LastName, "last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := c.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.print(map[string]any{"user": resp.User, "next": resp.NextRoute()})
}

func cmdLogout(ctx context.Context, c *cli, _ []string) error {
	if err := c.auth.Logout(ctx); err != nil {
		return err
	}
	return c.print(map[string]bool{"loggedOut": true})
}

func cmdStatus(ctx context.Context, c *cli, _ []string) error {
	status, err := c.auth.Status(ctx)
	if err != nil {
		return err
	}
	return c.print(status)
}

func cmdNotice(ctx context.Context, c *cli, _ []string) error {
	notice, err := c.sessions.TakeSubscriptionNotice(ctx)
	if err != nil {
		return err
	}
	if notice == nil {
		return c.print(map[string]any{})
	}
	return c.print(notice)
}

func cmdRestaurants(ctx context.Context, c *cli, args []string) error {
	act, args := action(args)
	fs := c.flags("restaurants " + act)
	id := fs.String("id", "", "restaurant id")
	name := fs.String("name", "", "restaurant name")
	description := fs.String("description", "", "description")
	phone := fs.String("phone", "", "restaurant phone")
	address := fs.String("address", "", "address")
	ownerPhone := fs.String("owner-phone", "", "owner phone, create only")
	ownerFirst := fs.String("owner-first", "", "owner first name, create only")
	ownerLast := fs.String("owner-last", "", "owner last name, create only")
	plan := fs.String("plan", restaurants.PlanPro, "subscription plan, create only")
	months := fs.Int("months", 1, "subscription months, create only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch act {
	case "list":
		list, err := c.restaurants.List(ctx)
		if err != nil {
			return err
		}
		return c.print(list)
	case "get":
		r, err := c.restaurants.Get(ctx, *id)
		if err != nil {
			return err
		}
		return c.print(r)
	case "create":
		r, err := c.restaurants.Create(ctx, restaurants.CreateRestaurantRequest{
			Name:                 *name,
			OwnerPhone:           *ownerPhone,
			OwnerFirstName:       *ownerFirst,
			OwnerLastName:        *ownerLast,
			Description:          *description,
			Phone:                *phone,
			Address:              *address,
			Plan:                 *plan,
			SubscriptionDuration: *months,
		})
		if err != nil {
			return err
		}
		return c.print(r)
	case "update":
		r, err := c.restaurants.Update(ctx, *id, restaurants.UpdateRestaurantRequest{
			Name:        utils.StringPtr(*name),
			Description: utils.StringPtr(*description),
			Phone:       utils.StringPtr(*phone),
			Address:     utils.StringPtr(*address),
		})
		if err != nil {
			return err
		}
		return c.print(r)
	case "delete":
		if err := c.restaurants.Delete(ctx, *id); err != nil {
			return err
		}
		return c.print(map[string]string{"deleted": *id})
	default:
		return unknownAction("restaurants", act)
	}
}

func cmdCategories(ctx context.Context, c *cli, args []string) error {
	act, args := action(args)
	fs := c.flags("categories " + act)
	restaurantID := fs.String("restaurant", "", "restaurant id")
	id := fs.String("id", "", "category id")
	name := fs.String("name", "", "category name")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := restaurants.CategoryRequest{Name: *name, Description: *description}
	switch act {
	case "list":
		list, err := c.restaurants.ListCategories(ctx, *restaurantID)
		if err != nil {
			return err
		}
		return c.print(list)
	case "create":
		cat, err := c.restaurants.CreateCategory(ctx, *restaurantID, req)
		if err != nil {
			return err
		}
		return c.print(cat)
	case "update":
		cat, err := c.restaurants.UpdateCategory(ctx, *restaurantID, *id, req)
		if err != nil {
			return err
		}
		return c.print(cat)
	case "delete":
		if err := c.restaurants.DeleteCategory(ctx, *restaurantID, *id); err != nil {
			return err
		}
		return c.print(map[string]string{"deleted": *id})
	default:
		return unknownAction("categories", act)
	}
}

func cmdItems(ctx context.Context, c *cli, args []string) error {
	act, args := action(args)
	fs := c.flags("items " + act)
	restaurantID := fs.String("restaurant", "", "restaurant id")
	id := fs.String("id", "", "item id")
	name := fs.String("name", "", "item name")
	description := fs.String("description", "", "description")
	category := fs.String("category", "", "category id")
	price := fs.Float64("price", -1, "price")
	allergens := fs.String("allergens", "", "comma separated allergens")
	available := fs.Bool("available", true, "availability, for the availability action")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := restaurants.MenuItemRequest{
		Name:        utils.StringPtr(*name),
		Description: utils.StringPtr(*description),
		CategoryID:  utils.StringPtr(*category),
		Allergens:   utils.SplitList(*allergens),
	}
	if *price >= 0 {
		req.Price = utils.Ptr(*price)
	}

	switch act {
	case "list":
		list, err := c.restaurants.ListItems(ctx, *restaurantID)
		if err != nil {
			return err
		}
		return c.print(list)
	case "create":
		item, err := c.restaurants.CreateItem(ctx, *restaurantID, req)
		if err != nil {
			return err
		}
		return c.print(item)
	case "update":
		item, err := c.restaurants.UpdateItem(ctx, *restaurantID, *id, req)
		if err != nil {
			return err
		}
		return c.print(item)
	case "availability":
		item, err := c.restaurants.SetItemAvailability(ctx, *restaurantID, *id, *available)
		if err != nil {
			return err
		}
		return c.print(item)
	case "delete":
		if err := c.restaurants.DeleteItem(ctx, *restaurantID, *id); err != nil {
			return err
		}
		return c.print(map[string]string{"deleted": *id})
	default:
		return unknownAction("items", act)
	}
}

func cmdSettings(ctx context.Context, c *cli, args []string) error {
	act, args := action(args)
	if act == "list" {
		act = "get"
	}
	fs := c.flags("settings " + act)
	restaurantID := fs.String("restaurant", "", "restaurant id")
	color := fs.String("color", "", "primary colour, e.g. #0284c7")
	languages := fs.String("languages", "", "comma separated menu languages")
	defaultLanguage := fs.String("default-language", "", "default menu language")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch act {
	case "get":
		s, err := c.restaurants.GetSettings(ctx, *restaurantID)
		if err != nil {
			return err
		}
		return c.print(s)
	case "update":
		s, err := c.restaurants.UpdateSettings(ctx, *restaurantID, restaurants.SettingsUpdate{
			PrimaryColor:    utils.StringPtr(*color),
			Languages:       utils.SplitList(*languages),
			DefaultLanguage: utils.StringPtr(*defaultLanguage),
		})
		if err != nil {
			return err
		}
		return c.print(s)
	default:
		return unknownAction("settings", act)
	}
}

func cmdQR(ctx context.Context, c *cli, args []string) error {
	act, args := action(args)
	fs := c.flags("qr " + act)
	restaurantID := fs.String("restaurant", "", "restaurant id")
	id := fs.String("id", "", "qr code id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch act {
	case "list":
		list, err := c.restaurants.ListQRCodes(ctx, *restaurantID)
		if err != nil {
			return err
		}
		return c.print(list)
	case "create":
		qr, err := c.restaurants.CreateQRCode(ctx, *restaurantID)
		if err != nil {
			return err
		}
		return c.print(qr)
	case "regenerate":
		qr, err := c.restaurants.RegenerateQRCode(ctx, *restaurantID)
		if err != nil {
			return err
		}
		return c.print(qr)
	case "delete":
		if err := c.restaurants.DeleteQRCode(ctx, *restaurantID, *id); err != nil {
			return err
		}
		return c.print(map[string]string{"deleted": *id})
	default:
		return unknownAction("qr", act)
	}
}

// cmdUpload uploads -file. With -restaurant it becomes the logo, with -restaurant and -item
// the item's image.
func cmdUpload(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("upload")
	path := fs.String("file", "", "image file")
	folder := fs.String("folder", restaurants.FolderMenuItems, "storage folder: logos or menu-items")
	restaurantID := fs.String("restaurant", "", "restaurant whose logo or item image to set")
	itemID := fs.String("item", "", "menu item whose image to set")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: upload needs -file", errUsage)
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()
	name := filepath.Base(*path)

	switch {
	case *restaurantID != "" && *itemID != "":
		item, err := c.restaurants.SetItemImage(ctx, *restaurantID, *itemID, name, f)
		if err != nil {
			return err
		}
		return c.print(item)
	case *restaurantID != "":
		s, err := c.restaurants.SetLogo(ctx, *restaurantID, name, f)
		if err != nil {
			return err
		}
		return c.print(s)
	default:
		url, err := c.restaurants.UploadImage(ctx, *folder, name, f)
		if err != nil {
			return err
		}
		return c.print(restaurants.UploadResult{URL: url})
	}
}

func cmdAdminStats(ctx context.Context, c *cli, _ []string) error {
	stats, err := c.admin.Stats(ctx)
	if err != nil {
		return err
	}
	return c.print(stats)
}

func cmdAdminRestaurant(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("admin-restaurant")
	id := fs.String("id", "", "restaurant id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := c.admin.GetRestaurant(ctx, *id)
	if err != nil {
		return err
	}
	return c.print(r)
}

func cmdAdminRenew(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("admin-renew")
	id := fs.String("id", "", "restaurant id")
	duration := fs.Int("duration", 1, "months to add")
	plan := fs.String("plan", "", "switch to this plan")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sub, err := c.admin.RenewSubscription(ctx, *id, admin.RenewRequest{Duration: *duration, Plan: *plan})
	if err != nil {
		return err
	}
	return c.print(sub)
}

func cmdAdminCancel(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("admin-cancel")
	id := fs.String("id", "", "restaurant id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sub, err := c.admin.CancelSubscription(ctx, *id)
	if err != nil {
		return err
	}
	return c.print(sub)
}

func cmdMenu(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("menu")
	code := fs.String("code", "", "scanned QR code")
	lang := fs.String("lang", "", "menu language, defaults to ar")
	search := fs.String("search", "", "only show items matching this text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" {
		return fmt.Errorf("%w: menu needs -code", menuerrors.ErrInvalidArgument)
	}

	menu, err := c.public.MenuForCode(ctx, *code, *lang)
	if err != nil {
		return err
	}
	if *search != "" {
		menu.Categories = menu.Search(*search)
	}
	return c.print(menu)
}
