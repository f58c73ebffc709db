package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"storefront/internal/apiclient"
	"storefront/internal/domain"
	"storefront/internal/storefront"
)

func authCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "log in and keep the session cookie",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"STOREFRONT_PASSWORD"}},
			},
			Action: action(func(c *cli.Context, s *session) error {
				u, err := s.gate.Login(c.Context, c.String("email"), c.String("password"))
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Logged in as %s (%s)\n", u.FullName, u.Role)
				return nil
			}),
		},
		{
			Name:  "logout",
			Usage: "end the session",
			Action: action(func(c *cli.Context, s *session) error {
				return s.gate.Logout(c.Context)
			}),
		},
		{
			Name:  "register",
			Usage: "create a customer account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"STOREFRONT_PASSWORD"}},
			},
			Action: action(func(c *cli.Context, s *session) error {
				u, err := s.gate.Register(c.Context, apiclient.RegisterRequest{
					FullName: c.String("name"),
					Email:    c.String("email"),
					Password: c.String("password"),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "Registered %s, you can log in now\n", u.Email)
				return nil
			}),
		},
		{
			Name:  "me",
			Usage: "show the session user",
			Action: action(func(c *cli.Context, s *session) error {
				u, err := s.gate.Check(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "#%d %s <%s> role=%s\n", u.ID, u.FullName, u.Email, u.Role)
				return nil
			}),
		},
	}
}

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "browse the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}},
			&cli.Int64Flag{Name: "category"},
			&cli.StringFlag{Name: "sort", Usage: "price-asc, price-desc, name or rating"},
			&cli.StringFlag{Name: "min", Usage: "min price"},
			&cli.StringFlag{Name: "max", Usage: "max price"},
		},
		Action: action(func(c *cli.Context, s *session) error {
			b := storefront.NewCatalogBrowser(s.client, s.log, s.notify)
			if err := b.Load(c.Context); err != nil {
				return err
			}
			q := storefront.Query{
				Search:     c.String("search"),
				CategoryID: c.Int64("category"),
				Sort:       storefront.SortKey(c.String("sort")),
			}
			var err error
			if q.MinPrice, err = optionalPrice(c.String("min")); err != nil {
				return err
			}
			if q.MaxPrice, err = optionalPrice(c.String("max")); err != nil {
				return err
			}
			printProducts(s.out, b, b.View(q))
			return nil
		}),
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "product details and related products",
				ArgsUsage: "PRODUCT_ID",
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					b := storefront.NewCatalogBrowser(s.client, s.log, s.notify)
					if err := b.Load(c.Context); err != nil {
						return err
					}
					p, ok := b.Product(id)
					if !ok {
						return storefront.ErrProductNotFound
					}
					printProduct(s.out, b, p, s.client.ImageURL(p.Image))
					if related := b.Related(id, 4); len(related) > 0 {
						fmt.Fprintln(s.out, "\nRelated:")
						printProducts(s.out, b, related)
					}
					return nil
				}),
			},
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "delivery", Usage: "LINE_ID=standard|express|same-day, repeatable"},
		&cli.StringFlag{Name: "promo"},
	}
}

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "show and edit the cart",
		Flags: selectionFlags(),
		Action: action(func(c *cli.Context, s *session) error {
			if err := s.enter(c, "/carts"); err != nil {
				return err
			}
			r := storefront.NewCartReconciler(s.client, s.log, s.notify)
			if err := r.FetchCart(c.Context); err != nil {
				return err
			}
			if err := applyCartSelections(c, r); err != nil {
				return err
			}
			printCart(s.out, r.Items(), r.Totals())
			return nil
		}),
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a product to the cart",
				ArgsUsage: "PRODUCT_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "qty", Value: "1"}},
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					if err := s.enter(c, "/carts"); err != nil {
						return err
					}
					b := storefront.NewCatalogBrowser(s.client, s.log, s.notify)
					if err := b.Load(c.Context); err != nil {
						return err
					}
					b.SetQuantity(id, c.String("qty"))
					_, err = b.AddToCart(c.Context, id)
					return err
				}),
			},
			{
				Name:      "edit",
				Usage:     "set the quantity of a cart line",
				ArgsUsage: "LINE_ID QUANTITY",
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					if err := s.enter(c, "/carts"); err != nil {
						return err
					}
					r := storefront.NewCartReconciler(s.client, s.log, s.notify)
					if err := r.FetchCart(c.Context); err != nil {
						return err
					}
					if err := r.BeginEdit(id); err != nil {
						return err
					}
					r.SetEditValue(c.Args().Get(1))
					if err := r.CommitCurrentEdit(c.Context); err != nil {
						return err
					}
					printCart(s.out, r.Items(), r.Totals())
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "remove a cart line",
				ArgsUsage: "LINE_ID",
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					if err := s.enter(c, "/carts"); err != nil {
						return err
					}
					r := storefront.NewCartReconciler(s.client, s.log, s.notify)
					if err := r.FetchCart(c.Context); err != nil {
						return err
					}
					if err := r.DeleteLine(c.Context, id); err != nil {
						return err
					}
					printCart(s.out, r.Items(), r.Totals())
					return nil
				}),
			},
		},
	}
}

func checkoutCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "phone"},
		&cli.StringFlag{Name: "street"},
		&cli.StringFlag{Name: "city"},
		&cli.StringFlag{Name: "postal"},
		&cli.StringFlag{Name: "payment", Usage: "credit, bank, ewallet or cod"},
		&cli.BoolFlag{Name: "accept-terms"},
		&cli.BoolFlag{Name: "dry-run", Usage: "show the review step without placing the order"},
	}
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order from the cart",
		Flags: append(flags, selectionFlags()...),
		Action: action(func(c *cli.Context, s *session) error {
			if err := s.enter(c, "/checkout"); err != nil {
				return err
			}
			tax, err := s.cfg.Tax()
			if err != nil {
				return err
			}
			cart := storefront.NewCartReconciler(s.client, s.log, s.notify)
			if err := cart.FetchCart(c.Context); err != nil {
				return err
			}
			if err := applyCartSelections(c, cart); err != nil {
				return err
			}

			f := storefront.NewCheckoutFlow(s.client, s.log, s.notify, tax)
			if err := f.Load(c.Context); err != nil {
				return err
			}
			f.CarryOver(cart)

			for _, field := range storefront.AddressFields {
				if err := f.SetAddress(field, c.String(field)); err != nil {
					return err
				}
			}
			if err := f.Next(); err != nil {
				return stepError(f, err)
			}
			if v := c.String("payment"); v != "" {
				if err := f.SelectPayment(domain.PaymentMethod(v)); err != nil {
					return err
				}
			}
			if err := f.Next(); err != nil {
				return stepError(f, err)
			}
			f.AcceptTerms(c.Bool("accept-terms"))

			fmt.Fprintf(s.out, "Ship to: %s, %s\n", f.Address().Name, f.Address().Formatted())
			printCart(s.out, f.Items(), f.Totals())
			if c.Bool("dry-run") {
				return nil
			}
			o, err := f.Submit(c.Context)
			if err != nil {
				return stepError(f, err)
			}
			fmt.Fprintf(s.out, "Order #%d placed, total %s, status %s\n", o.ID, domain.FormatRupiah(o.Total), o.Status.Label())
			return nil
		}),
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "order history and admin order management",
		Subcommands: []*cli.Command{
			{
				Name:  "mine",
				Usage: "orders of the session user",
				Action: action(func(c *cli.Context, s *session) error {
					if err := s.enter(c, "/my-orders"); err != nil {
						return err
					}
					u, _ := s.gate.User()
					m := storefront.NewOrderStatusManager(s.client, s.log, s.notify, nil)
					if err := m.FetchUserOrders(c.Context, u.ID); err != nil {
						return err
					}
					printOrders(s.out, m.Orders())
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "all orders (admin)",
				Action: action(func(c *cli.Context, s *session) error {
					m, err := adminOrders(c, s)
					if err != nil {
						return err
					}
					printOrders(s.out, m.Orders())
					return nil
				}),
			},
			{
				Name:      "status",
				Usage:     "change the status of an order (admin)",
				ArgsUsage: "ORDER_ID STATUS",
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					to, err := domain.ParseOrderStatus(c.Args().Get(1))
					if err != nil {
						return err
					}
					m, err := adminOrders(c, s)
					if err != nil {
						return err
					}
					if err := m.ChangeStatus(c.Context, id, to); err != nil {
						return err
					}
					o, _ := m.Order(id)
					fmt.Fprintf(s.out, "Order #%d is now %s [%s]\n", o.ID, o.Status, o.Status.Badge())
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "dashboard totals (admin)",
				Action: action(func(c *cli.Context, s *session) error {
					m, err := adminOrders(c, s)
					if err != nil {
						return err
					}
					printStats(s.out, m.Stats(), m.Daily())
					return nil
				}),
			},
		},
	}
}

func adminOrders(c *cli.Context, s *session) (*storefront.OrderStatusManager, error) {
	if err := s.enter(c, "/admin/orders"); err != nil {
		return nil, err
	}
	m := storefront.NewOrderStatusManager(s.client, s.log, s.notify, storefront.PolicyFor(s.cfg.StatusPolicy))
	if err := m.FetchOrders(c.Context); err != nil {
		return nil, err
	}
	return m, nil
}

func productFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.Int64Flag{Name: "price", Required: true},
		&cli.Int64Flag{Name: "category"},
		&cli.Int64Flag{Name: "rating-count"},
		&cli.Float64Flag{Name: "stars"},
		&cli.StringFlag{Name: "image", Usage: "path to an image file"},
	}
}

// productForm собирает форму; открытый файл изображения закрывает вызывающий
func productForm(c *cli.Context) (apiclient.ProductForm, func(), error) {
	f := apiclient.ProductForm{
		Name:        c.String("name"),
		Price:       c.Int64("price"),
		CategoryID:  c.Int64("category"),
		RatingCount: c.Int64("rating-count"),
	}
	if c.IsSet("stars") {
		v := c.Float64("stars")
		f.Stars = &v
	}
	closeFn := func() {}
	if path := c.String("image"); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return f, closeFn, err
		}
		f.Image = file
		f.ImageName = filepath.Base(path)
		closeFn = func() { file.Close() }
	}
	return f, closeFn, nil
}

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "catalog management (admin)",
		Subcommands: []*cli.Command{
			{
				Name:  "product-create",
				Flags: productFormFlags(),
				Action: action(func(c *cli.Context, s *session) error {
					if err := s.enter(c, "/admin/products"); err != nil {
						return err
					}
					form, done, err := productForm(c)
					defer done()
					if err != nil {
						return err
					}
					p, err := s.client.CreateProduct(c.Context, form)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "Created product #%d %s\n", p.ID, p.Name)
					return nil
				}),
			},
			{
				Name:      "product-update",
				ArgsUsage: "PRODUCT_ID",
				Flags:     productFormFlags(),
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					if err := s.enter(c, "/admin/products"); err != nil {
						return err
					}
					form, done, err := productForm(c)
					defer done()
					if err != nil {
						return err
					}
					p, err := s.client.UpdateProduct(c.Context, id, form)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "Updated product #%d %s\n", p.ID, p.Name)
					return nil
				}),
			},
			{
				Name:      "product-delete",
				ArgsUsage: "PRODUCT_ID",
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					if err := s.enter(c, "/admin/products"); err != nil {
						return err
					}
					return s.client.DeleteProduct(c.Context, id)
				}),
			},
			{
				Name:      "category-create",
				ArgsUsage: "NAME",
				Action: action(func(c *cli.Context, s *session) error {
					if err := s.enter(c, "/admin/categories"); err != nil {
						return err
					}
					cat, err := s.client.CreateCategory(c.Context, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "Created category #%d %s\n", cat.ID, cat.Name)
					return nil
				}),
			},
			{
				Name:      "order-delete",
				ArgsUsage: "ORDER_ID",
				Action: action(func(c *cli.Context, s *session) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					if err := s.enter(c, "/admin/orders"); err != nil {
						return err
					}
					return s.client.DeleteOrder(c.Context, id)
				}),
			},
		},
	}
}

func applyCartSelections(c *cli.Context, r *storefront.CartReconciler) error {
	for _, v := range c.StringSlice("delivery") {
		id, method, ok := strings.Cut(v, "=")
		if !ok {
			return fmt.Errorf("delivery %q: want LINE_ID=METHOD", v)
		}
		lineID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return fmt.Errorf("delivery %q: %w", v, err)
		}
		if err := r.SelectDelivery(lineID, domain.DeliveryMethod(strings.TrimSpace(method))); err != nil {
			return err
		}
	}
	if code := c.String("promo"); code != "" {
		return r.ApplyPromo(code)
	}
	return nil
}

func stepError(f *storefront.CheckoutFlow, err error) error {
	errs := f.Errors()
	if len(errs) == 0 {
		return err
	}
	msgs := make([]string, 0, len(errs))
	fields := append([]string{}, storefront.AddressFields...)
	for _, field := range append(fields, "payment", "terms") {
		if m, ok := errs[field]; ok {
			msgs = append(msgs, m)
		}
	}
	return fmt.Errorf("%w: %s", err, strings.Join(msgs, "; "))
}

func argID(c *cli.Context, i int) (int64, error) {
	raw := c.Args().Get(i)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("argument %d: %q is not a valid id", i+1, raw)
	}
	return id, nil
}

func optionalPrice(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, errors.New("price filter must be a non-negative integer")
	}
	return &v, nil
}
