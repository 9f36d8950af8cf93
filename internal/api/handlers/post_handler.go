package handlers

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"brandpanel/internal/queue"
	"brandpanel/internal/service"
	"brandpanel/internal/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type PostHandler struct {
	s           service.PostService
	wh          service.WebhookService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, wh service.WebhookService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, wh: wh, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if form, err := c.MultipartForm(); err == nil && form != nil {
		brandID, _ := strconv.ParseInt(c.FormValue("brand_id"), 10, 64)
		pc.BrandID = brandID
		pc.Title = c.FormValue("title")
		pc.ShortText = c.FormValue("short_text")
		pc.LongText = c.FormValue("long_text")
		pc.Caption = c.FormValue("caption")
		pc.Body = c.FormValue("body")
		if tags := c.FormValue("hashtags"); tags != "" {
			if err := json.Unmarshal([]byte(tags), &pc.Hashtags); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid hashtags format",
				})
			}
		}
	} else if err := c.BodyParser(&pc); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	media, _ := c.FormFile("media")

	postID, err := h.s.Create(c.Context(), userID, &pc, media)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": postID,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)
	brandID := c.QueryInt("brand_id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get post info",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID, int64(brandID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pu transfer.PostUpdate
	if err := c.BodyParser(&pu); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if err := h.s.Update(c.Context(), userID, &pu); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post updated",
	})
}

// GeneratePost relays the draft to the content-generation webhook and
// returns the updated post. The webhook can run for minutes on large media;
// the request deliberately has no deadline of its own.
func (h *PostHandler) GeneratePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	// Ownership check happens through PostInfo.
	if _, err := h.s.PostInfo(c.Context(), int64(postID), userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	media, _ := c.FormFile("media")

	post, err := h.wh.GeneratePost(c.Context(), int64(postID), media)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// ApprovePost marks the post approved and hands publishing to the queue. The
// response only acknowledges the handoff; the publish outcome lands on the
// post's status and last_error fields.
func (h *PostHandler) ApprovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	if err := h.s.Approve(c.Context(), userID, int64(postID)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: int64(postID)})
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"error": "Error scheduling publish",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post approved, publishing in background",
	})
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var req struct {
		ScheduleAt string `json:"schedule_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if err := h.s.Schedule(c.Context(), userID, int64(postID), req.ScheduleAt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post scheduled",
	})
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(postID)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post removed",
	})
}
